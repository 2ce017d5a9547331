// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections, schema creation, and data access.

# Connecting

Open picks the driver from the database type (sqlite via modernc.org/sqlite,
postgres via lib/pq) and tunes the pool:

	conn, err := db.Open(db.TypeSQLite, "file:photoswap.db")

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - participant: people taking part in the exchange
  - submission: one photo per participant
  - response: one response per participant per submission

# Relationships

	participant 1──1 submission
	submission  1──* response
	participant 1──* response

# Store

Store is the data-access collaborator of the flow controller:

	store := db.NewStore(conn, cfg.DatabaseType)
	user, err := store.FetchUser(ctx, userID)
	snapshot, err := store.FetchSubmissions(ctx, userID)

Queries are written with ? placeholders and rebound to $n for PostgreSQL.
Lookups that find nothing wrap ErrNotFound; duplicate submissions or
responses wrap ErrAlreadyExists.
*/
package db
