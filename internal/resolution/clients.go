package resolution

import (
	"jeongsim_ledger/internal/model"

	"github.com/rs/zerolog/log"
)

// FindClientByName returns the first client whose name equals name exactly.
func FindClientByName(clients []model.Client, name string) (model.Client, bool) {
	for _, c := range clients {
		if c.Name == name {
			return c, true
		}
	}
	return model.Client{}, false
}

// LinkClients fills ClientID and ContactPerson on transactions that have no
// client id yet, matching on the exact client name. Unmatched transactions
// are returned unchanged.
func LinkClients(txs []model.Transaction, clients []model.Client) []model.Transaction {
	linked := make([]model.Transaction, len(txs))
	matched := 0
	for i, tx := range txs {
		linked[i] = tx
		if tx.ClientID != "" {
			continue
		}
		client, ok := FindClientByName(clients, tx.ClientName)
		if !ok {
			continue
		}
		linked[i].ClientID = client.ID
		if client.ContactPerson != "" {
			linked[i].ContactPerson = client.ContactPerson
		}
		matched++
	}
	log.Debug().
		Int("transactions", len(txs)).
		Int("clients", len(clients)).
		Int("linked", matched).
		Msg("Linked transactions to clients")
	return linked
}
