// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides staff tokens, role checks and ID generation.

# Staff Tokens

Staff keys use HMAC-SHA256 over the profile ID:

	key := auth.GenerateStaffKey(profileID, salt)
	token := auth.StaffToken(profileID, salt) // "<profile_id>.<key>"

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same profile ID and salt always produce the same key, so validation needs
no stored secret:

	profileID, err := auth.ParseStaffToken(token, salt)

Clients send the token as a bearer credential:

	Authorization: Bearer <profile_id>.<key>

Rotating STAFF_KEY_SALT revokes every token at once. Deactivating a profile
(is_active = false) revokes one.

# Roles

Roles are ordered admin > manager > employee:

	auth.HasRole(profile.Role, models.RoleManager)

# ID Generation

Row IDs are random UUIDs:

	id := auth.GenerateID()
*/
package auth
