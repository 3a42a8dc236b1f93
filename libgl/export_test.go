package libgl

import (
	"iblcache/envmap"

	"go.uber.org/zap"
)

func NewDetachedBinding() *Binding {
	return &Binding{logger: zap.NewNop()}
}

func (b *Binding) Ready() *envmap.EnvMap {
	return b.ready()
}

var GlFilter = glFilter
var GlWrap = glWrap
