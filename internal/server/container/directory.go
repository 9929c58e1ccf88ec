package container

import (
	"fmt"
	"sort"
	"sync"

	"github.com/yndnr/remotebean-go/internal/core/contract"
	"github.com/yndnr/remotebean-go/internal/core/domain"
	"github.com/yndnr/remotebean-go/internal/core/service"
	"github.com/yndnr/remotebean-go/pkg/naming"
)

// Component is a deployable component.
type Component struct {
	Name      string
	Kind      naming.Kind
	Contracts []contract.Spec
	New       service.Factory
}

// Contract returns the contract with the given name, if exposed.
func (c *Component) Contract(name string) (contract.Spec, bool) {
	for _, s := range c.Contracts {
		if s.Name == name {
			return s, true
		}
	}
	return contract.Spec{}, false
}

// Deployment is a module deployed under an application and distinct name.
type Deployment struct {
	Application string
	Module      string
	Distinct    string
	Components  []*Component
}

type deploymentID struct {
	app, module, distinct string
}

func (d *Deployment) id() deploymentID {
	return deploymentID{d.Application, d.Module, d.Distinct}
}

// Binding is the result of a successful lookup.
type Binding struct {
	// Key is the canonical key of the resolved binding. It carries the
	// deployment's real distinct name.
	Key        naming.Key
	Descriptor naming.Descriptor
	Component  *Component
	Contract   contract.Spec
}

// Directory maps descriptors to deployed components.
type Directory struct {
	mu          sync.RWMutex
	deployments map[deploymentID]*Deployment
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		deployments: make(map[deploymentID]*Deployment),
	}
}

// Deploy registers a deployment. Deploying the same application, module
// and distinct name twice is an error.
func (d *Directory) Deploy(dep *Deployment) error {
	if dep.Module == "" {
		return domain.ErrInvalidArgument.WithDetails("deployment module is required")
	}

	seen := make(map[string]bool, len(dep.Components))
	for _, c := range dep.Components {
		if c.Name == "" || c.New == nil || len(c.Contracts) == 0 {
			return domain.ErrInvalidArgument.WithDetailsf("component %q needs a name, a factory and at least one contract", c.Name)
		}
		if seen[c.Name] {
			return domain.ErrInvalidArgument.WithDetailsf("component %q deployed twice in module %q", c.Name, dep.Module)
		}
		seen[c.Name] = true
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.deployments[dep.id()]; exists {
		return domain.ErrInvalidArgument.WithDetailsf("module %q already deployed (app %q, distinct %q)",
			dep.Module, dep.Application, dep.Distinct)
	}
	d.deployments[dep.id()] = dep
	return nil
}

// Deployments returns all deployments ordered by application, module and
// distinct name.
func (d *Directory) Deployments() []*Deployment {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*Deployment, 0, len(d.deployments))
	for _, dep := range d.deployments {
		out = append(out, dep)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].id(), out[j].id()
		if a.app != b.app {
			return a.app < b.app
		}
		if a.module != b.module {
			return a.module < b.module
		}
		return a.distinct < b.distinct
	})
	return out
}

// Lookup resolves a descriptor.
//
// An exact (application, module, distinct) match wins. If there is none and
// the descriptor's distinct name is empty, deployments of the module under
// any distinct name are considered: exactly one resolves, more than one is
// ErrAmbiguous.
func (d *Directory) Lookup(desc naming.Descriptor) (Binding, error) {
	if err := desc.Validate(); err != nil {
		return Binding{}, domain.ErrInvalidArgument.WithCause(err).WithDetails(err.Error())
	}

	dep, err := d.findDeployment(desc)
	if err != nil {
		return Binding{}, err
	}

	var comp *Component
	for _, c := range dep.Components {
		if c.Name == desc.Component {
			comp = c
			break
		}
	}
	if comp == nil {
		return Binding{}, domain.ErrNotFound.WithDetailsf("no component %q in module %q", desc.Component, desc.Module)
	}

	spec, ok := comp.Contract(desc.Contract)
	if !ok {
		return Binding{}, domain.ErrNotFound.WithDetailsf("component %q does not expose contract %q", comp.Name, desc.Contract)
	}

	if comp.Kind != desc.Kind {
		return Binding{}, domain.ErrNotFound.WithDetailsf("component %q is %s, lookup asked for %s", comp.Name, comp.Kind, desc.Kind)
	}

	resolved := naming.Descriptor{
		Application: dep.Application,
		Module:      dep.Module,
		Distinct:    dep.Distinct,
		Component:   comp.Name,
		Contract:    spec.Name,
		Kind:        comp.Kind,
	}

	return Binding{
		Key:        resolved.Key(),
		Descriptor: resolved,
		Component:  comp,
		Contract:   spec,
	}, nil
}

func (d *Directory) findDeployment(desc naming.Descriptor) (*Deployment, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if dep, ok := d.deployments[deploymentID{desc.Application, desc.Module, desc.Distinct}]; ok {
		return dep, nil
	}

	if desc.Distinct != "" {
		return nil, domain.ErrNotFound.WithDetailsf("no deployment of module %q with distinct name %q", desc.Module, desc.Distinct)
	}

	var matches []*Deployment
	for id, dep := range d.deployments {
		if id.app == desc.Application && id.module == desc.Module {
			matches = append(matches, dep)
		}
	}

	switch len(matches) {
	case 0:
		return nil, domain.ErrNotFound.WithDetailsf("no deployment of module %q", desc.Module)
	case 1:
		return matches[0], nil
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = fmt.Sprintf("%q", m.Distinct)
		}
		sort.Strings(names)
		return nil, domain.ErrAmbiguous.WithDetailsf("module %q is deployed under distinct names %v", desc.Module, names)
	}
}
