package db_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"ms-booking/internal/apperr"
	"ms-booking/internal/manage/db"
	"ms-booking/internal/models"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) *db.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:")
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	tables := []interface{}{
		(*models.User)(nil),
		(*models.Venue)(nil),
		(*models.Event)(nil),
		(*models.EventVenue)(nil),
		(*models.Ticket)(nil),
		(*models.EventSponsor)(nil),
		(*models.EventStaff)(nil),
		(*models.Feedback)(nil),
	}
	for _, table := range tables {
		if err := bunDB.ResetModel(context.Background(), table); err != nil {
			t.Fatalf("Failed to create table for %T: %v", table, err)
		}
	}
	t.Cleanup(func() { bunDB.Close() })

	return &db.DB{Bun: bunDB}
}

func seedVenue(t *testing.T, d *db.DB) models.Venue {
	t.Helper()
	venue := models.Venue{VenueID: 200, Name: "Phoenix Arena", Address: "MG Road, Bengaluru", Capacity: 5000}
	if _, err := d.Bun.NewInsert().Model(&venue).Exec(context.Background()); err != nil {
		t.Fatalf("Failed to seed venue: %v", err)
	}
	return venue
}

func TestCreateUserGeneratesID(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	first, err := d.CreateUser(ctx, models.User{
		Name:     "Diya Menon",
		Email:    "diya@example.com",
		Role:     models.RoleOrganizer,
		Password: "organizer123",
	})
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	if first == 0 {
		t.Fatal("Expected a generated user id")
	}

	second, err := d.CreateUser(ctx, models.User{
		Name:     "Kabir Reddy",
		Email:    "kabir@example.com",
		Role:     models.RoleCustomer,
		Password: "customer123",
	})
	if err != nil {
		t.Fatalf("Failed to create second user: %v", err)
	}
	if second == first {
		t.Errorf("Expected distinct ids, both were %d", first)
	}

	users, err := d.ListUsers(ctx)
	if err != nil {
		t.Fatalf("Failed to list users: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("Expected 2 users, got %d", len(users))
	}
}

func TestUpdateUserNotFound(t *testing.T) {
	d := setupTestDB(t)

	err := d.UpdateUser(context.Background(), models.User{
		UserID:   999,
		Name:     "Ghost",
		Email:    "ghost@example.com",
		Role:     models.RoleCustomer,
		Password: "x",
	})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCreateEventLinksVenue(t *testing.T) {
	d := setupTestDB(t)
	venue := seedVenue(t, d)
	ctx := context.Background()

	eventID, err := d.CreateEvent(ctx, models.Event{
		Title:       "Standup Comedy Gala",
		Category:    "Comedy",
		StartDate:   time.Now().Add(7 * 24 * time.Hour),
		Duration:    2,
		OrganizerID: 2,
	}, venue.VenueID)
	if err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}
	if eventID == 0 {
		t.Fatal("Expected a generated event id")
	}

	var link models.EventVenue
	err = d.Bun.NewSelect().Model(&link).Where("event_id = ?", eventID).Scan(ctx)
	if err != nil {
		t.Fatalf("Failed to load venue link: %v", err)
	}
	if link.VenueID != venue.VenueID {
		t.Errorf("Expected venue %d linked, got %d", venue.VenueID, link.VenueID)
	}
}

func TestUpdateEvent(t *testing.T) {
	d := setupTestDB(t)
	venue := seedVenue(t, d)
	ctx := context.Background()

	eventID, err := d.CreateEvent(ctx, models.Event{
		Title:       "Standup Comedy Gala",
		Category:    "Comedy",
		StartDate:   time.Now().Add(7 * 24 * time.Hour),
		Duration:    2,
		OrganizerID: 2,
	}, venue.VenueID)
	if err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}

	err = d.UpdateEvent(ctx, models.Event{
		EventID:   eventID,
		Title:     "Standup Comedy Gala - Extended",
		Category:  "Comedy",
		StartDate: time.Now().Add(8 * 24 * time.Hour),
		Duration:  3,
	}, 0)
	if err != nil {
		t.Fatalf("Failed to update event: %v", err)
	}

	event, err := d.GetEvent(ctx, eventID)
	if err != nil {
		t.Fatalf("Failed to load event: %v", err)
	}
	if event.Title != "Standup Comedy Gala - Extended" {
		t.Errorf("Expected updated title, got %s", event.Title)
	}
	if event.Duration != 3 {
		t.Errorf("Expected duration 3, got %d", event.Duration)
	}

	err = d.UpdateEvent(ctx, models.Event{EventID: 999, Title: "Ghost"}, 0)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown event, got %v", err)
	}
}

func TestDeleteEventCascadesDependents(t *testing.T) {
	d := setupTestDB(t)
	venue := seedVenue(t, d)
	ctx := context.Background()

	eventID, err := d.CreateEvent(ctx, models.Event{
		Title:       "Tech Summit 2026",
		Category:    "Tech",
		StartDate:   time.Now().Add(30 * 24 * time.Hour),
		Duration:    8,
		OrganizerID: 2,
	}, venue.VenueID)
	if err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}

	ticketID, err := d.CreateTicket(ctx, models.Ticket{
		EventID:      eventID,
		Category:     "Standard",
		Price:        999.0,
		Availability: 300,
	})
	if err != nil {
		t.Fatalf("Failed to create ticket: %v", err)
	}
	fb := models.Feedback{UserID: 3, EventID: eventID, Rating: 5}
	if _, err := d.Bun.NewInsert().Model(&fb).Exec(ctx); err != nil {
		t.Fatalf("Failed to seed feedback: %v", err)
	}

	if err := d.DeleteEvent(ctx, eventID); err != nil {
		t.Fatalf("Failed to delete event: %v", err)
	}

	if _, err := d.GetEvent(ctx, eventID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Expected event gone, got %v", err)
	}
	for name, model := range map[string]interface{}{
		"event_venues": (*models.EventVenue)(nil),
		"feedback":     (*models.Feedback)(nil),
	} {
		count, err := d.Bun.NewSelect().Model(model).Where("event_id = ?", eventID).Count(ctx)
		if err != nil {
			t.Fatalf("Failed to count %s: %v", name, err)
		}
		if count != 0 {
			t.Errorf("Expected no %s rows for deleted event, got %d", name, count)
		}
	}
	count, err := d.Bun.NewSelect().Model((*models.Ticket)(nil)).Where("ticket_id = ?", ticketID).Count(ctx)
	if err != nil {
		t.Fatalf("Failed to count tickets: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected ticket deleted with event, got %d rows", count)
	}
}

func TestTicketCRUD(t *testing.T) {
	d := setupTestDB(t)
	venue := seedVenue(t, d)
	ctx := context.Background()

	eventID, err := d.CreateEvent(ctx, models.Event{
		Title:       "Indie Music Night",
		Category:    "Music",
		StartDate:   time.Now().Add(14 * 24 * time.Hour),
		Duration:    3,
		OrganizerID: 2,
	}, venue.VenueID)
	if err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}

	ticketID, err := d.CreateTicket(ctx, models.Ticket{
		EventID:      eventID,
		Category:     "General",
		Price:        499.0,
		Availability: 150,
	})
	if err != nil {
		t.Fatalf("Failed to create ticket: %v", err)
	}
	if ticketID == 0 {
		t.Fatal("Expected a generated ticket id")
	}

	err = d.UpdateTicket(ctx, models.Ticket{
		TicketID:     ticketID,
		Category:     "General",
		Price:        549.0,
		Availability: 140,
	})
	if err != nil {
		t.Fatalf("Failed to update ticket: %v", err)
	}

	var ticket models.Ticket
	if err := d.Bun.NewSelect().Model(&ticket).Where("ticket_id = ?", ticketID).Scan(ctx); err != nil {
		t.Fatalf("Failed to load ticket: %v", err)
	}
	if ticket.Price != 549.0 || ticket.Availability != 140 {
		t.Errorf("Unexpected ticket after update: %+v", ticket)
	}

	if err := d.UpdateTicket(ctx, models.Ticket{TicketID: 999, Category: "x"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown ticket, got %v", err)
	}

	if err := d.DeleteTicket(ctx, ticketID); err != nil {
		t.Fatalf("Failed to delete ticket: %v", err)
	}
	count, err := d.Bun.NewSelect().Model((*models.Ticket)(nil)).Count(ctx)
	if err != nil {
		t.Fatalf("Failed to count tickets: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 tickets after delete, got %d", count)
	}
}
