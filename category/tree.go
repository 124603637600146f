package category

import (
	"goflare.io/storefront/models"
)

// BuildTree arranges categories under their parents, keeping input order
// among siblings. A category whose parent is missing is promoted to a root
// so it stays reachable.
func BuildTree(categories []*models.Category) []*models.CategoryTree {
	categoryMap := make(map[int64]*models.CategoryTree, len(categories))
	for _, cat := range categories {
		categoryMap[cat.ID] = &models.CategoryTree{Category: cat}
	}

	roots := make([]*models.CategoryTree, 0)
	for _, cat := range categories {
		node := categoryMap[cat.ID]
		if cat.ParentID == nil || *cat.ParentID == cat.ID {
			roots = append(roots, node)
			continue
		}

		parent, exists := categoryMap[*cat.ParentID]
		if !exists {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	return roots
}
