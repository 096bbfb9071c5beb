package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ms-booking/internal/apperr"
	"ms-booking/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// ListFilter narrows the public event listing. Sort is matched against an
// allow-list so the order-by clause is never caller-controlled SQL.
type ListFilter struct {
	Query    string
	Category string
	Sort     string
	Order    string
	Page     int
	Limit    int
}

var allowedSort = map[string]string{
	"startDate": "e.start_date",
	"title":     "e.title",
	"category":  "e.category",
}

func (f ListFilter) sortClause() string {
	col, ok := allowedSort[f.Sort]
	if !ok {
		col = "e.start_date"
	}
	dir := "ASC"
	if f.Order == "desc" {
		dir = "DESC"
	}
	return col + " " + dir
}

func (f ListFilter) limitOffset() (int, int) {
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 12
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	return limit, (page - 1) * limit
}

// ListEvents returns the catalogue rows: events with their venue and the
// average feedback rating.
func (d *DB) ListEvents(ctx context.Context, filter ListFilter) ([]models.EventSummary, error) {
	limit, offset := filter.limitOffset()

	q := d.Bun.NewSelect().
		ColumnExpr("e.event_id").
		ColumnExpr("e.title").
		ColumnExpr("e.category").
		ColumnExpr("e.event_description").
		ColumnExpr("e.start_date").
		ColumnExpr("e.duration").
		ColumnExpr("e.organizer_id").
		ColumnExpr("COALESCE(v.venue_name, '') AS venue_name").
		ColumnExpr("COALESCE(v.venue_address, '') AS venue_address").
		ColumnExpr("(SELECT COALESCE(AVG(f.rating), 0) FROM feedback AS f WHERE f.event_id = e.event_id) AS avg_rating").
		TableExpr("events AS e").
		Join("LEFT JOIN event_venues AS ev ON ev.event_id = e.event_id").
		Join("LEFT JOIN venues AS v ON v.venue_id = ev.venue_id")

	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		q = q.Where("(e.title LIKE ? OR e.event_description LIKE ? OR v.venue_name LIKE ?)", pattern, pattern, pattern)
	}
	if filter.Category != "" {
		q = q.Where("e.category = ?", filter.Category)
	}

	var rows []models.EventSummary
	err := q.OrderExpr(filter.sortClause()).
		Limit(limit).
		Offset(offset).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if rows == nil {
		rows = []models.EventSummary{}
	}
	return rows, nil
}

// GetEventSummary returns one event with venue and rating, or
// apperr.ErrNotFound.
func (d *DB) GetEventSummary(ctx context.Context, eventID int64) (*models.EventSummary, error) {
	var row models.EventSummary
	err := d.Bun.NewSelect().
		ColumnExpr("e.event_id").
		ColumnExpr("e.title").
		ColumnExpr("e.category").
		ColumnExpr("e.event_description").
		ColumnExpr("e.start_date").
		ColumnExpr("e.duration").
		ColumnExpr("e.organizer_id").
		ColumnExpr("COALESCE(v.venue_name, '') AS venue_name").
		ColumnExpr("COALESCE(v.venue_address, '') AS venue_address").
		ColumnExpr("(SELECT COALESCE(AVG(f.rating), 0) FROM feedback AS f WHERE f.event_id = e.event_id) AS avg_rating").
		TableExpr("events AS e").
		Join("LEFT JOIN event_venues AS ev ON ev.event_id = e.event_id").
		Join("LEFT JOIN venues AS v ON v.venue_id = ev.venue_id").
		Where("e.event_id = ?", eventID).
		Limit(1).
		Scan(ctx, &row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &row, nil
}

// ListTicketsByEvent returns the event's ticket tiers.
func (d *DB) ListTicketsByEvent(ctx context.Context, eventID int64) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Where("event_id = ?", eventID).
		OrderExpr("ticket_id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	if tickets == nil {
		tickets = []models.Ticket{}
	}
	return tickets, nil
}

func (d *DB) ListVenues(ctx context.Context) ([]models.Venue, error) {
	var venues []models.Venue
	err := d.Bun.NewSelect().
		Model(&venues).
		OrderExpr("venue_id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	if venues == nil {
		venues = []models.Venue{}
	}
	return venues, nil
}
