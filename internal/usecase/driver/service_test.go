package driver

import (
	"context"
	"errors"
	"testing"

	domainDriver "fleet-tracker/internal/domain/driver"
)

type fakeDriverRepo struct {
	byID    map[int64]*domainDriver.Driver
	byCard  map[string]*domainDriver.Driver
	nextID  int64
	creates int
	updates int
	deletes []int64
}

func newFakeDriverRepo() *fakeDriverRepo {
	return &fakeDriverRepo{
		byID:   map[int64]*domainDriver.Driver{},
		byCard: map[string]*domainDriver.Driver{},
	}
}

func (r *fakeDriverRepo) Create(_ context.Context, d *domainDriver.Driver) error {
	r.creates++
	r.nextID++
	d.ID = r.nextID
	r.byID[d.ID] = d
	if d.RFIDCard != nil {
		r.byCard[*d.RFIDCard] = d
	}
	return nil
}

func (r *fakeDriverRepo) GetByID(_ context.Context, id int64) (*domainDriver.Driver, error) {
	if d, ok := r.byID[id]; ok {
		return d, nil
	}
	return nil, domainDriver.ErrDriverNotFound
}

func (r *fakeDriverRepo) GetByRFIDCard(_ context.Context, card string) (*domainDriver.Driver, error) {
	if d, ok := r.byCard[card]; ok {
		return d, nil
	}
	return nil, domainDriver.ErrDriverNotFound
}

func (r *fakeDriverRepo) List(_ context.Context, activeOnly bool) ([]*domainDriver.Driver, error) {
	drivers := []*domainDriver.Driver{}
	for _, d := range r.byID {
		if activeOnly && !d.IsActive {
			continue
		}
		drivers = append(drivers, d)
	}
	return drivers, nil
}

func (r *fakeDriverRepo) Update(_ context.Context, d *domainDriver.Driver) error {
	r.updates++
	r.byID[d.ID] = d
	return nil
}

func (r *fakeDriverRepo) Delete(_ context.Context, id int64) error {
	r.deletes = append(r.deletes, id)
	delete(r.byID, id)
	return nil
}

func TestCreateDriver(t *testing.T) {
	repo := newFakeDriverRepo()
	svc := NewService(repo, nil)

	resp, err := svc.Create(context.Background(), &CreateDriverRequest{Name: "Alex"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !resp.IsActive {
		t.Errorf("new driver IsActive = false, want true")
	}
	if repo.creates != 1 {
		t.Errorf("creates = %d, want 1", repo.creates)
	}
}

func TestCreateDriverDuplicateRFID(t *testing.T) {
	repo := newFakeDriverRepo()
	svc := NewService(repo, nil)

	card := "CARD-1"
	if _, err := svc.Create(context.Background(), &CreateDriverRequest{Name: "Alex", RFIDCard: &card}); err != nil {
		t.Fatalf("first Create() error = %v", err)
	}

	_, err := svc.Create(context.Background(), &CreateDriverRequest{Name: "Sam", RFIDCard: &card})
	if !errors.Is(err, domainDriver.ErrRFIDCardInUse) {
		t.Fatalf("second Create() error = %v, want ErrRFIDCardInUse", err)
	}
}

func TestUpdateDriverKeepsOwnRFID(t *testing.T) {
	repo := newFakeDriverRepo()
	svc := NewService(repo, nil)

	card := "CARD-1"
	created, err := svc.Create(context.Background(), &CreateDriverRequest{Name: "Alex", RFIDCard: &card})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Re-submitting the same card on the same driver is not a conflict.
	if _, err := svc.Update(context.Background(), created.ID, &UpdateDriverRequest{RFIDCard: &card}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
}

func TestUpdateDriverPartial(t *testing.T) {
	repo := newFakeDriverRepo()
	svc := NewService(repo, nil)

	created, _ := svc.Create(context.Background(), &CreateDriverRequest{Name: "Alex"})

	inactive := false
	resp, err := svc.Update(context.Background(), created.ID, &UpdateDriverRequest{IsActive: &inactive})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if resp.IsActive {
		t.Errorf("IsActive = true, want false")
	}
	if resp.Name != "Alex" {
		t.Errorf("Name = %q, want unchanged", resp.Name)
	}
}

func TestGetUnknownDriver(t *testing.T) {
	svc := NewService(newFakeDriverRepo(), nil)

	_, err := svc.Get(context.Background(), 42)
	if !errors.Is(err, domainDriver.ErrDriverNotFound) {
		t.Fatalf("Get() error = %v, want ErrDriverNotFound", err)
	}
}
