// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

// Package testinfra provides backing services for tests: MongoDB in Docker
// through testcontainers-go, and a mock OpenID Connect provider.
//
// The MongoDB container backs the mongostore integration suite:
//
//	mongo, err := testinfra.NewMongoContainer(ctx)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer testinfra.CleanupContainer(t, ctx, mongo)
//
//	pool := database.NewPool(config.DatabaseConfig{URI: mongo.URI, Name: "launchpad_test"})
//
// The container helpers are behind the integration build tag. Tests skip
// themselves when Docker is not reachable:
//
//	go test -tags integration ./internal/store/mongostore/...
//
// MockIdP is an in-process OpenID Connect provider and needs no tag. Unit
// tests point auth.NewOIDCProvider at it and use Authorize in place of a
// browser:
//
//	idp, _ := testinfra.NewMockIdP("client", "secret")
//	defer idp.Close()
//	back, err := idp.Authorize(authURL) // back carries code and state
package testinfra
