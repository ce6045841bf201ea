package adapter

import (
	"github.com/askarin/fieldvault/internal/gate"
	"github.com/askarin/fieldvault/internal/store"
)

// The adapter stands in for the server-side collaborators on the client.
var (
	_ store.RecordRepository = (*HTTPVaultAdapter)(nil)
	_ gate.GateService       = (*HTTPVaultAdapter)(nil)
)
