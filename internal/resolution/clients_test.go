package resolution

import (
	"testing"

	"jeongsim_ledger/internal/model"
)

func TestLinkClients(t *testing.T) {
	clients := []model.Client{
		{ID: "c1", Name: "Acme", ContactPerson: "Lee"},
		{ID: "c2", Name: "Beta"},
		{ID: "c3", Name: "Acme", ContactPerson: "Second"},
	}
	txs := []model.Transaction{
		{ID: "t1", ClientName: "Acme"},
		{ID: "t2", ClientName: "Beta", ContactPerson: "Kept"},
		{ID: "t3", ClientName: "acme"},
		{ID: "t4", ClientName: "Acme", ClientID: "manual"},
	}

	linked := LinkClients(txs, clients)

	if linked[0].ClientID != "c1" || linked[0].ContactPerson != "Lee" {
		t.Errorf("Expected first Acme client, got %+v", linked[0])
	}
	if linked[1].ClientID != "c2" || linked[1].ContactPerson != "Kept" {
		t.Errorf("Expected contact person kept when client has none, got %+v", linked[1])
	}
	if linked[2].ClientID != "" {
		t.Errorf("Expected case-sensitive match to fail, got %+v", linked[2])
	}
	if linked[3].ClientID != "manual" {
		t.Errorf("Expected existing client id kept, got %+v", linked[3])
	}
	if txs[0].ClientID != "" {
		t.Error("Expected input slice to be left untouched")
	}
}

func TestFindClientByNameMissing(t *testing.T) {
	if _, ok := FindClientByName(nil, "Acme"); ok {
		t.Error("Expected no match in empty list")
	}
}
