// Package handlers implements the hub's wire endpoints (spec §6): preupload
// classification, the Git-LFS batch protocol, the atomic commit endpoint,
// the resolve/tree/revision read paths, repository CRUD, and session auth.
// Grounded on _examples/marmos91-dittofs/pkg/api/handlers/*.go for the
// per-handler-struct-with-dependencies shape and the decode/fetch-or-error
// helper pattern (helpers.go), adapted to call the hub's C1-C8 packages
// instead of identity/registry.
package handlers

import (
	"github.com/marmos91/hubd/pkg/auth"
	"github.com/marmos91/hubd/pkg/authz"
	"github.com/marmos91/hubd/pkg/commit"
	"github.com/marmos91/hubd/pkg/metadata"
	"github.com/marmos91/hubd/pkg/resolver"
	"github.com/marmos91/hubd/pkg/transfer"
	"github.com/marmos91/hubd/pkg/versioning"
)

// Dependencies bundles every component the handlers call into, replacing
// the teacher's single *registry.Registry (there is no adapter/share
// registry concept in the hub; each component is wired independently).
type Dependencies struct {
	Store      metadata.MetadataStore
	Auth       *auth.Service
	Tokens     *auth.TokenService
	Quota      *authz.QuotaGate
	Versioning *versioning.Engine
	Classifier *transfer.Classifier
	Broker     *transfer.Broker
	Verifier   *transfer.Verifier
	Commit     *commit.Engine
	Resolver   *resolver.Resolver
}
