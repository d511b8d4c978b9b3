package workload

// Scenario is a small fixed operation sequence with a known outcome.
type Scenario struct {
	Name        string
	Description string
	Ops         []Op
}

var insertOrder = []int{6, 4, 7, 3, 1, 2, 5, 8, 9, 0}

func puts(keys []int, value func(k int) int) []Op {
	ops := make([]Op, 0, len(keys))
	for _, k := range keys {
		ops = append(ops, Op{Kind: Put, Key: k, Value: value(k)})
	}
	return ops
}

func removes(keys ...int) []Op {
	ops := make([]Op, 0, len(keys))
	for _, k := range keys {
		ops = append(ops, Op{Kind: Remove, Key: k})
	}
	return ops
}

func identity(k int) int { return k }

// Scenarios returns the small sequential scenarios, indexed by number.
func Scenarios() []Scenario {
	ascending := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	descending := []int{9, 8, 7, 6, 5, 4, 3, 2, 1, 0}

	update := puts(insertOrder, identity)
	update = append(update, puts(insertOrder, func(k int) int { return -k })...)

	removeSome := puts(insertOrder, identity)
	removeSome = append(removeSome, removes(2, 5, 8, 9, 0)...)

	removeTwice := puts(insertOrder, identity)
	removeTwice = append(removeTwice, removes(ascending...)...)
	removeTwice = append(removeTwice, removes(descending...)...)

	return []Scenario{
		{
			Name:        "insert",
			Description: "put 10 nodes, check that all 10 of them are present",
			Ops:         puts(insertOrder, identity),
		},
		{
			Name:        "update",
			Description: "put 10 nodes then update all of their values",
			Ops:         update,
		},
		{
			Name:        "remove-some",
			Description: "put 10 nodes then remove 5 of them",
			Ops:         removeSome,
		},
		{
			Name:        "remove-empty",
			Description: "remove 5 times on an empty map",
			Ops:         removes(1, 2, 3, 4, 5),
		},
		{
			Name:        "remove-twice",
			Description: "put 10 nodes then remove all of them twice",
			Ops:         removeTwice,
		},
	}
}
