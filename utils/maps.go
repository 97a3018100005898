package utils

import "sort"

func CloneMap[K comparable, V any](m map[K]V) map[K]V {
	cloneM := make(map[K]V, len(m))
	for k, v := range m {
		cloneM[k] = v
	}
	return cloneM
}

func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func UniqueSlice[K comparable](a []K) []K {
	m := make(map[K]bool)
	for i := 0; i < len(a); {
		v := a[i]
		if !m[v] {
			m[v] = true
			i++
			continue
		}
		a = append(a[:i], a[i+1:]...)
	}
	return a
}
