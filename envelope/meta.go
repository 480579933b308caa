package envelope

import "fmt"

// Profile 包络片段的运行工况
type Profile int32

const (
	ProfileUnknown Profile = iota
	ProfileAccelerating
	ProfileBraking
	ProfileConstantSpeed
	ProfileCatchingUp
	ProfileCoasting
)

var profileNames = map[Profile]string{
	ProfileUnknown:       "UNKNOWN",
	ProfileAccelerating:  "ACCELERATING",
	ProfileBraking:       "BRAKING",
	ProfileConstantSpeed: "CONSTANT_SPEED",
	ProfileCatchingUp:    "CATCHING_UP",
	ProfileCoasting:      "COASTING",
}

func (p Profile) String() string {
	if name, ok := profileNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Profile(%d)", int32(p))
}

// LimitKind MRSP片段的限速来源
type LimitKind int32

const (
	LimitNone  LimitKind = iota
	SpeedLimit           // 线路限速
	TrainLimit           // 列车最高速度
)

func (k LimitKind) String() string {
	switch k {
	case SpeedLimit:
		return "SPEED_LIMIT"
	case TrainLimit:
		return "TRAIN_LIMIT"
	default:
		return "NONE"
	}
}

// StopMeta 标记以停车为目标的制动片段
type StopMeta struct {
	Index int // 停车点在输入停车列表中的下标
}

// PartMeta 包络片段的元数据
// 功能：封闭的工况枚举，加上可选的停车下标与限速来源
// 说明：片段构造后元数据不可变，StopMeta以值拷贝的方式保存
type PartMeta struct {
	Profile Profile
	Limit   LimitKind
	Stop    *StopMeta
}

// MetaWithProfile 创建仅带有工况的元数据
func MetaWithProfile(profile Profile) PartMeta {
	return PartMeta{Profile: profile}
}

// WithStop 返回附加了停车下标的元数据副本
func (m PartMeta) WithStop(index int) PartMeta {
	m.Stop = &StopMeta{Index: index}
	return m
}

// StopIndex 返回停车下标，不存在时ok为false
func (m PartMeta) StopIndex() (index int, ok bool) {
	if m.Stop == nil {
		return -1, false
	}
	return m.Stop.Index, true
}

// Equal 比较两个元数据（停车下标按值比较）
func (m PartMeta) Equal(other PartMeta) bool {
	if m.Profile != other.Profile || m.Limit != other.Limit {
		return false
	}
	i, ok := m.StopIndex()
	j, otherOk := other.StopIndex()
	return ok == otherOk && i == j
}

func (m PartMeta) String() string {
	if i, ok := m.StopIndex(); ok {
		return fmt.Sprintf("%v stop=%d", m.Profile, i)
	}
	if m.Limit != LimitNone {
		return fmt.Sprintf("%v limit=%v", m.Profile, m.Limit)
	}
	return m.Profile.String()
}
