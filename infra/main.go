package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/GregMSThompson/imihigo-backend/infra/cloudrun"
	"github.com/GregMSThompson/imihigo-backend/infra/docker"
	"github.com/GregMSThompson/imihigo-backend/infra/firestore"
	"github.com/GregMSThompson/imihigo-backend/infra/identity"
	"github.com/GregMSThompson/imihigo-backend/infra/provider"
)

func main() {
	pulumi.Run(func(ctx *pulumi.Context) error {
		prov, err := provider.SetupDefaultProvider(ctx)
		if err != nil {
			return err
		}

		// firebase sign-in backs the district user accounts
		ident, err := identity.SetupIdentity(ctx, prov)
		if err != nil {
			return err
		}

		db, err := firestore.SetupFirestore(ctx, prov)
		if err != nil {
			return err
		}

		repo, err := docker.CreateCloudrunRepo(ctx, prov)
		if err != nil {
			return err
		}

		url, err := cloudrun.SetupCloudRun(ctx, prov, ident, db, repo)
		if err != nil {
			return err
		}

		ctx.Export("apiUrl", url)
		return nil
	})
}
