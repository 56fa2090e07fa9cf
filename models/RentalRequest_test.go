package models

import "testing"

func TestRentalRequestParties(t *testing.T) {
	request := RentalRequest{OwnerID: 7, RenterID: 12}

	if !request.IsParty(7) || !request.IsParty(12) {
		t.Error("expected owner and renter to be parties")
	}
	if request.IsParty(99) {
		t.Error("expected outsider not to be a party")
	}

	if got := request.OtherParty(7); got != 12 {
		t.Errorf("expected other party of owner to be renter 12, got %d", got)
	}
	if got := request.OtherParty(12); got != 7 {
		t.Errorf("expected other party of renter to be owner 7, got %d", got)
	}
}
