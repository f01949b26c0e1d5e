package container

// ProviderResult states explicitly whether a provider took part and what it
// contributed. Use NoResources to decline, Resources to contribute.
type ProviderResult struct {
	provided  bool
	resources []any
}

// NoResources declines: the provider leaves no trace on the container.
func NoResources() ProviderResult {
	return ProviderResult{}
}

// Resources contributes the given values under the provider's name.
func Resources(items ...any) ProviderResult {
	return ProviderResult{provided: true, resources: items}
}

func (r ProviderResult) Provided() bool { return r.provided }

// ProvideFunc runs during construction, before any hook. It may register
// hooks or tasks on the container and may look up resources contributed by
// providers that ran before it.
type ProvideFunc func(c *Container) (ProviderResult, error)

// Provider is a named construction-time extension point.
type Provider struct {
	name    string
	provide ProvideFunc
}

func NewProvider(provide ProvideFunc) Provider {
	return Provider{name: funcName(provide), provide: provide}
}

func NamedProvider(name string, provide ProvideFunc) Provider {
	return Provider{name: name, provide: provide}
}

func (p Provider) Name() string { return p.name }
