package container

import (
	"sync/atomic"

	"github.com/yndnr/remotebean-go/internal/core/service"
)

// pool holds the instances of one stateless component. Calls are spread
// round-robin, so consecutive calls usually land on different instances.
type pool struct {
	instances []service.Bean
	next      atomic.Uint64
}

func newPool(factory service.Factory, size int) *pool {
	if size < 1 {
		size = 1
	}

	p := &pool{instances: make([]service.Bean, size)}
	for i := range p.instances {
		p.instances[i] = factory()
	}
	return p
}

// get returns the next instance and its index.
func (p *pool) get() (service.Bean, int) {
	i := int((p.next.Add(1) - 1) % uint64(len(p.instances)))
	return p.instances[i], i
}
