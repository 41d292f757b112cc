// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

// Package auth provides the identity primitives used by command handlers.
//
// # Components
//
//   - PasswordHasher - argon2id hashing with bcrypt verification for imported accounts
//   - TokenService - HS256 identity tokens bound to a person id
//   - Resolver - turns a bearer token into a local user view
//   - GenerateResetToken - password reset tokens stored as sha256 digests
package auth
