package utils

import (
	"time"

	"github.com/google/uuid"
	// Ensure this import path matches the pgx version you are using (e.g., v5)
	"github.com/jackc/pgx/v5/pgtype"
)

// ToUUID converts a domain uuid.UUID to a pgtype.UUID.
func ToUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

// ToNullUUID converts a domain's *uuid.UUID (pointer) to a pgtype.UUID.
// A nil pointer is considered invalid (NULL).
func ToNullUUID(id *uuid.UUID) pgtype.UUID {
	if id == nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: *id, Valid: true}
}

// FromNullUUID converts a pgtype.UUID to a domain's *uuid.UUID.
// A NULL value is converted to nil.
func FromNullUUID(v pgtype.UUID) *uuid.UUID {
	if !v.Valid {
		return nil
	}
	id := uuid.UUID(v.Bytes)
	return &id
}

// ToNullTime converts a domain's *time.Time (pointer) to a pgtype.Timestamptz.
// A nil pointer is considered invalid (NULL).
func ToNullTime(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

// FromNullTime converts a pgtype.Timestamptz to a domain's *time.Time.
// A NULL value is converted to nil.
func FromNullTime(v pgtype.Timestamptz) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
