package sim

import (
	"slices"
	"sync"
)

type gradeCacheEntry struct {
	path     *GradePath
	length   float64
	sections []GradeSection
}

// GradeCache 路径坡度缓存
// 功能：按路径标识缓存已经构建的GradePath，由调用方持有并显式失效
// 说明：缓存只是记忆化，命中时还要求长度和坡度区段与缓存项一致，否则重新构建并替换；并发安全
type GradeCache struct {
	mtx   sync.Mutex
	paths map[string]gradeCacheEntry
}

// NewGradeCache 创建空缓存
func NewGradeCache() *GradeCache {
	return &GradeCache{paths: make(map[string]gradeCacheEntry)}
}

// Path 获取路径，不存在或输入变化时用给定的坡度区段构建并缓存
// 参数：id-路径标识，length-路径长度，sections-坡度区段
// 返回：路径指针，构建失败时返回错误且不缓存
func (c *GradeCache) Path(id string, length float64, sections []GradeSection) (*GradePath, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if e, ok := c.paths[id]; ok {
		if e.length == length && slices.Equal(e.sections, sections) {
			return e.path, nil
		}
		log.Debugf("grade cache: path %s changed, rebuilding", id)
	}
	p, err := NewGradePath(length, sections)
	if err != nil {
		return nil, err
	}
	log.Debugf("grade cache: built path %s with %d grade ranges", id, len(p.grades))
	c.paths[id] = gradeCacheEntry{path: p, length: length, sections: slices.Clone(sections)}
	return p, nil
}

// Invalidate 删除路径的缓存
func (c *GradeCache) Invalidate(id string) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	delete(c.paths, id)
}

// Len 缓存的路径数量
func (c *GradeCache) Len() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return len(c.paths)
}
