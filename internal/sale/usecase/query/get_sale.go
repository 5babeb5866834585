package query

import (
	"fmt"

	"github.com/caterstock/billing/internal/sale/domain"
)

// LineItemNode is one top-level line with its composite children attached
type LineItemNode struct {
	domain.SaleLineItem
	Components []domain.SaleLineItem `json:"components,omitempty"`
}

// SaleDetails is a sale with its line items regrouped into composite trees
type SaleDetails struct {
	domain.Sale
	Lines []LineItemNode `json:"lines"`
}

// GetSaleQuery represents the query to get a sale
type GetSaleQuery struct {
	ID uint
}

// GetSaleHandler handles get sale query
type GetSaleHandler struct {
	repo domain.SaleRepository
}

// NewGetSaleHandler creates a new get sale handler
func NewGetSaleHandler(repo domain.SaleRepository) *GetSaleHandler {
	return &GetSaleHandler{repo: repo}
}

// Handle executes the get sale query
func (h *GetSaleHandler) Handle(query GetSaleQuery) (*SaleDetails, error) {
	if query.ID == 0 {
		return nil, fmt.Errorf("id is required")
	}

	sale, err := h.repo.FindByID(query.ID)
	if err != nil {
		return nil, fmt.Errorf("sale not found: %w", err)
	}

	details := &SaleDetails{Sale: *sale}
	details.Lines = buildLineTree(sale.Items)
	details.Items = nil

	return details, nil
}

// buildLineTree rebuilds composite trees from the flat rows with one indexed
// pass per level: headers and simple rows first, then children attached to
// their parent row.
func buildLineTree(items []domain.SaleLineItem) []LineItemNode {
	nodes := make([]LineItemNode, 0, len(items))
	headerIdx := make(map[uint]int)

	for _, item := range items {
		switch item.Kind() {
		case domain.LineItemCompositeComponent:
			continue
		case domain.LineItemCompositeHeader:
			headerIdx[item.ID] = len(nodes)
		}
		nodes = append(nodes, LineItemNode{SaleLineItem: item})
	}

	for _, item := range items {
		if item.Kind() != domain.LineItemCompositeComponent || item.ParentLineID == nil {
			continue
		}
		if idx, ok := headerIdx[*item.ParentLineID]; ok {
			nodes[idx].Components = append(nodes[idx].Components, item)
		}
	}

	return nodes
}
