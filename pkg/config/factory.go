package config

import "github.com/appwire/framework/pkg/contracts"

var _ Loader = (*envConfigLoader)(nil)
var _ Loader = (*yamlConfigLoader)(nil)
var _ Loader = (*jsonConfigLoader)(nil)
var _ Loader = (*dotenvConfigLoader)(nil)
var _ Loader = (*chainLoader)(nil)

func NewEnvConfigLoader(prefix string) Loader {
	return &envConfigLoader{prefix: prefix}
}

func NewYamlConfigLoader(paths ...string) Loader {
	return &yamlConfigLoader{paths: paths}
}

func NewJSONConfigLoader(paths ...string) Loader {
	return &jsonConfigLoader{paths: paths}
}

func NewDotenvConfigLoader(prefix string, paths ...string) Loader {
	return &dotenvConfigLoader{prefix: prefix, paths: paths}
}

func NewChainLoader(loaders ...Loader) Loader {
	return &chainLoader{loaders: loaders}
}

func NewMapConfig(values map[string]any) contracts.Config {
	return &MapConfig{values: values}
}

// Merge folds src into dst, recursing into nested sections.
func Merge(dst, src map[string]any) error {
	return mergeMaps(dst, src)
}
