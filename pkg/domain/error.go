package domain

import "github.com/m-mizutani/goerr/v2"

// Sentinels carry explicit IDs so identity survives Wrap and can be
// checked with ErrX.Is on the wrapped error.
var (
	ErrPrecondition  = goerr.New("precondition failed", goerr.ID("precondition"))
	ErrTimeout       = goerr.New("timeout", goerr.ID("timeout"))
	ErrDispatch      = goerr.New("dispatch failed", goerr.ID("dispatch"))
	ErrPersistence   = goerr.New("persistence failed", goerr.ID("persistence"))
	ErrImport        = goerr.New("import document rejected", goerr.ID("import"))
	ErrConfiguration = goerr.New("configuration error", goerr.ID("configuration"))
)
