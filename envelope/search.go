package envelope

import "sort"

// findLeft 查找包含position的区间下标
// 功能：points为严格递增的端点序列，区间i为[points[i], points[i+1]]
// 返回：区间下标，position恰好位于两个区间交界处时返回左侧区间；越界返回-1
func findLeft(points []float64, position float64) int {
	n := len(points)
	if n < 2 || position < points[0] || position > points[n-1] {
		return -1
	}
	i := sort.SearchFloat64s(points, position)
	if points[i] == position && i == 0 {
		return 0
	}
	return i - 1
}

// findRight 查找包含position的区间下标，交界处返回右侧区间；越界返回-1
func findRight(points []float64, position float64) int {
	n := len(points)
	if n < 2 || position < points[0] || position > points[n-1] {
		return -1
	}
	i := sort.SearchFloat64s(points, position)
	if points[i] == position {
		if i == n-1 {
			return n - 2
		}
		return i
	}
	return i - 1
}
