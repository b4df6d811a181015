package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dataspeak/backend/internal/lexicon"
)

type DictionaryHandler struct {
	loader *lexicon.Loader
	idx    *lexicon.Index
}

func NewDictionaryHandler(loader *lexicon.Loader, idx *lexicon.Index) *DictionaryHandler {
	return &DictionaryHandler{
		loader: loader,
		idx:    idx,
	}
}

func (h *DictionaryHandler) GetStats(c *fiber.Ctx) error {
	loaded, missing := h.loader.Stats()

	return c.JSON(fiber.Map{
		"categories_loaded":  loaded,
		"categories_missing": missing,
		"entries":            h.idx.Stats(),
	})
}
