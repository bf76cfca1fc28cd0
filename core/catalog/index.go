package catalog

import (
	"fmt"
	"sort"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/docstore"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/rating"
)

const unassigned = "Unassigned"

type (
	// Index is an immutable view of the catalog grouped by category, then class level, then kind.
	// Changes produce a new Index.
	Index struct {
		items      []Item // newest first
		byID       map[string]int
		byCategory map[string][]Item
		categories []string
	}

	// Group holds the items of one category sharing a class level and a kind.
	Group struct {
		ClassLevel int    `json:"classLevel"`
		Kind       Kind   `json:"kind"`
		Items      []Item `json:"items"`
	}

	// TreeNode is a node of the board > class > subject > topic drill-down.
	TreeNode struct {
		Name     string     `json:"name"`
		Count    int        `json:"count"`
		Children []TreeNode `json:"children,omitempty"`
	}
)

// BuildIndex indexes items. When ids repeat, the last item wins.
func BuildIndex(items []Item) *Index {
	uniq := make(map[string]Item, len(items))
	for _, it := range items {
		uniq[it.ID] = it
	}
	sorted := make([]Item, 0, len(uniq))
	for _, it := range uniq {
		sorted = append(sorted, it)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return docstore.Before(sorted[i].Position(), sorted[j].Position())
	})

	idx := &Index{
		items:      sorted,
		byID:       make(map[string]int, len(sorted)),
		byCategory: make(map[string][]Item),
	}
	for i, it := range sorted {
		idx.byID[it.ID] = i
		if _, ok := idx.byCategory[it.Category]; !ok {
			idx.categories = append(idx.categories, it.Category)
		}
		idx.byCategory[it.Category] = append(idx.byCategory[it.Category], it)
	}
	sort.Strings(idx.categories)
	return idx
}

func (idx *Index) Len() int { return len(idx.items) }

func (idx *Index) Get(id string) (Item, bool) {
	i, ok := idx.byID[id]
	if !ok {
		return Item{}, false
	}
	return idx.items[i], true
}

// Categories returns the distinct categories in sorted order.
func (idx *Index) Categories() []string {
	return append([]string(nil), idx.categories...)
}

// Query returns the items matching f, newest first. No match is an empty result.
func (idx *Index) Query(f Filter) []Item {
	candidates := idx.items
	if f.Category != "" {
		candidates = idx.byCategory[f.Category]
	}
	res := make([]Item, 0)
	for _, it := range candidates {
		if f.Match(it) {
			res = append(res, it)
		}
	}
	return res
}

// Group returns the groups of category ordered by class level then kind.
// Unknown categories have no groups.
func (idx *Index) Group(category string) []Group {
	type key struct {
		level int
		kind  Kind
	}
	byKey := make(map[key]*Group)
	keys := make([]key, 0)
	for _, it := range idx.byCategory[category] {
		k := key{it.ClassLevel, it.Kind()}
		g, ok := byKey[k]
		if !ok {
			g = &Group{ClassLevel: k.level, Kind: k.kind}
			byKey[k] = g
			keys = append(keys, k)
		}
		g.Items = append(g.Items, it)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].level != keys[j].level {
			return keys[i].level < keys[j].level
		}
		return keys[i].kind < keys[j].kind
	})

	groups := make([]Group, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, *byKey[k])
	}
	return groups
}

// Tree returns the item counts per board, class, subject and topic.
func (idx *Index) Tree() []TreeNode {
	counts := make(map[string]map[int]map[string]map[string]int)
	for _, it := range idx.items {
		board := orUnassigned(it.Board)
		if counts[board] == nil {
			counts[board] = make(map[int]map[string]map[string]int)
		}
		if counts[board][it.ClassLevel] == nil {
			counts[board][it.ClassLevel] = make(map[string]map[string]int)
		}
		subject := orUnassigned(it.Subject)
		if counts[board][it.ClassLevel][subject] == nil {
			counts[board][it.ClassLevel][subject] = make(map[string]int)
		}
		counts[board][it.ClassLevel][subject][orUnassigned(it.Topic)]++
	}

	boards := make([]TreeNode, 0, len(counts))
	for _, board := range sortedKeys(counts) {
		bNode := TreeNode{Name: board}
		levels := make([]int, 0, len(counts[board]))
		for level := range counts[board] {
			levels = append(levels, level)
		}
		sort.Slice(levels, func(i, j int) bool { return classOrder(levels[i]) < classOrder(levels[j]) })

		for _, level := range levels {
			cNode := TreeNode{Name: classLabel(level)}
			subjects := counts[board][level]
			for _, subject := range sortedKeys(subjects) {
				sNode := TreeNode{Name: subject}
				for _, topic := range sortedKeys(subjects[subject]) {
					n := subjects[subject][topic]
					sNode.Children = append(sNode.Children, TreeNode{Name: topic, Count: n})
					sNode.Count += n
				}
				cNode.Children = append(cNode.Children, sNode)
				cNode.Count += sNode.Count
			}
			bNode.Children = append(bNode.Children, cNode)
			bNode.Count += cNode.Count
		}
		boards = append(boards, bNode)
	}
	return boards
}

// With returns a copy of the index holding it, replacing any item with the same id.
func (idx *Index) With(it Item) *Index {
	items := make([]Item, 0, len(idx.items)+1)
	for _, old := range idx.items {
		if old.ID != it.ID {
			items = append(items, old)
		}
	}
	return BuildIndex(append(items, it))
}

// Without returns a copy of the index without the item id.
func (idx *Index) Without(id string) *Index {
	if _, ok := idx.byID[id]; !ok {
		return idx
	}
	items := make([]Item, 0, len(idx.items))
	for _, old := range idx.items {
		if old.ID != id {
			items = append(items, old)
		}
	}
	return BuildIndex(items)
}

// WithRating returns a copy of the index where item id carries s.
func (idx *Index) WithRating(id string, s rating.Summary) *Index {
	it, ok := idx.Get(id)
	if !ok {
		return idx
	}
	it.Rating = s
	return idx.With(it)
}

func orUnassigned(s string) string {
	if s == "" {
		return unassigned
	}
	return s
}

func classLabel(level int) string {
	if level == 0 {
		return unassigned
	}
	return fmt.Sprintf("Class %d", level)
}

// classOrder puts items without a class level last.
func classOrder(level int) int {
	if level == 0 {
		return 13
	}
	return level
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
