package democsd_test

import (
	"testing"

	"github.com/matzehuels/modelgraph/pkg/core/clone"
	"github.com/matzehuels/modelgraph/pkg/core/closure"
	"github.com/matzehuels/modelgraph/pkg/core/entity"
	"github.com/matzehuels/modelgraph/pkg/core/serde"
	"github.com/matzehuels/modelgraph/pkg/notation/democsd"
)

func registry() *entity.Registry {
	r := entity.NewRegistry()
	democsd.Register(r)
	return r
}

// Customer (CA01) initiates T01 executed by Seller (A01), which owns it.
func sample() (*democsd.Diagram, *democsd.Transactor, *democsd.Transactor, *democsd.Link) {
	d := democsd.NewDiagram("Sales")
	customer := democsd.NewTransactor("CA01", "customer", false)
	seller := democsd.NewTransactor("A01", "seller", true)
	seller.Transaction = democsd.NewTransaction("T01", "order completing")
	link := democsd.NewLink(customer, seller.Transaction)
	d.Add(customer)
	d.Add(seller)
	d.Add(link)
	return d, customer, seller, link
}

func TestOwnedTransactionRoundTrip(t *testing.T) {
	d, _, seller, _ := sample()
	rs, err := serde.Serialize(d)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if rs.Len() != 5 {
		t.Fatalf("records = %d, want 5", rs.Len())
	}
	got, err := serde.GetAs[*democsd.Diagram](serde.NewDeserializer(registry(), rs), d.ID())
	if err != nil {
		t.Fatalf("GetAs: %v", err)
	}
	gotSeller := got.Elements[1].(*democsd.Transactor)
	link := got.Elements[2].(*democsd.Link)
	if gotSeller.Transaction == nil || gotSeller.Transaction.ID() != seller.Transaction.ID() {
		t.Fatal("owned transaction lost")
	}
	if link.Target != gotSeller.Transaction {
		t.Error("link target is not the owned transaction")
	}
	if got.Elements[0].(*democsd.Transactor).Transaction != nil {
		t.Error("transactor without transaction gained one")
	}
}

func TestDeletingTransactorCascadesThroughOwnedTransaction(t *testing.T) {
	d, customer, seller, link := sample()
	got := closure.Compute(registry(), []entity.Node{d}, entity.NewSet(seller.ID()))
	want := entity.NewSet(seller.ID(), seller.Transaction.ID(), link.ID())
	if !got.Equal(want) {
		t.Errorf("closure has %d ids, want %d", len(got), len(want))
	}
	if got.Has(customer.ID()) {
		t.Error("unrelated transactor deleted")
	}
}

func TestDeepCopyRelinksToCopiedTransaction(t *testing.T) {
	d, _, seller, link := sample()
	_, m, err := clone.DeepCopy(registry(), d)
	if err != nil {
		t.Fatalf("DeepCopy: %v", err)
	}
	cpLink := m[link.ID()].(*democsd.Link)
	cpTx := m[seller.Transaction.ID()]
	if cpLink.Target != cpTx {
		t.Error("link not relinked to the copied transaction")
	}
	if cpLink.LinkType != democsd.LinkInitiation {
		t.Errorf("LinkType = %q", cpLink.LinkType)
	}
}
