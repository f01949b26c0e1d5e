package config

// chainLoader merges the output of several loaders in order. Later loaders
// override earlier ones, so callers list layers lowest-precedence first.
type chainLoader struct {
	loaders []Loader
}

func (c *chainLoader) Load() (map[string]any, error) {
	final := make(map[string]any)
	loaded := false

	for _, loader := range c.loaders {
		values, err := loader.Load()
		if err != nil {
			continue
		}
		loaded = true

		if err = mergeMaps(final, values); err != nil {
			return nil, ErrMergeFailed.WithCause(err)
		}
	}

	if !loaded {
		return nil, ErrNoConfigSource
	}

	return final, nil
}

func mergeMaps(dst, src map[string]any) error {
	for k, v := range src {
		if vMap, ok := v.(map[string]any); ok {
			if dstV, exists := dst[k]; exists {
				if dstMap, ok := dstV.(map[string]any); ok {
					if err := mergeMaps(dstMap, vMap); err != nil {
						return err
					}
					continue
				}
			}
		}
		dst[k] = v
	}
	return nil
}
