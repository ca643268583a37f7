// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

// Package recommend picks one venue for a user.
//
// # Pipeline
//
// A Selector works on a user's session.Preferences:
//
//  1. Incomplete preferences (survey, contexts, location) stop early.
//  2. The user context is taken from the session or built from the ontology;
//     an unknown fact stops early and names the fact.
//  3. The location resolves to a region whose text index is built on first
//     use. Concurrent first requests share one build.
//  4. Without a cached pick, a TypePolicy chooses content-based or
//     context-aware selection, BuildQuery turns the answers into a query,
//     the index is searched, hits outside the nearby radius are dropped and
//     the best survivor is cached on the preferences.
//  5. A cached pick is returned without searching until a reset.
//
// # Determinism
//
// Ties are broken by the catalog total order. The random type policy is
// seeded from configuration.
//
// # Usage
//
//	sel, err := recommend.NewSelector(recommend.DefaultConfig(), recommend.Deps{
//		Resolver: resolver,
//		Catalog:  registry,
//		Build:    recommend.SearchIndexBuilder,
//		Ontology: store,
//	})
//	out := sel.Recommend(ctx, userID, prefs)
//	switch out.Status {
//	case recommend.StatusOK:
//		fmt.Println(out.Venue)
//	case recommend.StatusMissingContext:
//		askFor(out.Missing)
//	}
package recommend
