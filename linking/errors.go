package linking

import (
	"errors"

	"github.com/sadenar/DiscordWikiBot/wiki"
)

// Per-reference outcomes. None of them escapes a message pass.
var (
	ErrInvalidTitle    = wiki.ErrInvalidTitle
	ErrMetadataFetch   = wiki.ErrMetadataFetch
	ErrEmptyTitle      = errors.New("reference has no title")
	ErrNamespaceOnly   = errors.New("reference names a namespace without a page")
	ErrCycleTerminated = errors.New("interwiki prefix chain exceeded its bound")
)
