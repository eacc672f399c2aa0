package kedalab

// subset projects live down to the keys manifest declares. Lists are compared
// element-wise; elements beyond the manifest's length are kept as found.
func subset(live, manifest map[string]any) map[string]any {
	result := make(map[string]any, len(manifest))
	for key, value := range manifest {
		liveValue, ok := live[key]
		if !ok {
			continue
		}
		result[key] = subsetValue(liveValue, value)
	}
	return result
}

func subsetValue(live, manifest any) any {
	switch manifest := manifest.(type) {
	case map[string]any:
		liveMap, ok := live.(map[string]any)
		if !ok {
			return live
		}
		return subset(liveMap, manifest)
	case []any:
		liveSlice, ok := live.([]any)
		if !ok {
			return live
		}
		result := make([]any, len(liveSlice))
		for i, element := range liveSlice {
			if i < len(manifest) {
				result[i] = subsetValue(element, manifest[i])
			} else {
				result[i] = element
			}
		}
		return result
	default:
		return live
	}
}
