package scan

import "sort"

// ValueCount is a value with its frequency.
type ValueCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// valueCounts counts occurrences of distinct values.
type valueCounts map[string]int64

func (c valueCounts) add(value string, n int64) {
	c[value] += n
}

// sorted returns the counts by descending frequency, ties by value.
func (c valueCounts) sorted() []ValueCount {
	out := make([]ValueCount, 0, len(c))
	for v, n := range c {
		out = append(out, ValueCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// keepTopN drops all but the n most frequent values.
func (c valueCounts) keepTopN(n int) {
	if len(c) <= n {
		return
	}
	for _, vc := range c.sorted()[n:] {
		delete(c, vc.Value)
	}
}
