// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// Profile is the user's display profile.
type Profile struct {
	FullName string `json:"full_name"`
}

// User is the authenticated account as reported by GET /users/me.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	IsActive     bool      `json:"is_active"`
	IsConsultant bool      `json:"is_consultant"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Profile      Profile   `json:"profile"`
}
