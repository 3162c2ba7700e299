package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/hackforge/atlasman/internal/auth"
	"github.com/hackforge/atlasman/internal/cleanup"
	"github.com/hackforge/atlasman/internal/cli"
	"github.com/hackforge/atlasman/internal/cloud/atlas"
	"github.com/hackforge/atlasman/internal/cluster"
	"github.com/hackforge/atlasman/internal/log"
	"github.com/hackforge/atlasman/internal/platform"
	"github.com/hackforge/atlasman/internal/provision"
	"github.com/hackforge/atlasman/internal/reconcile"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	// Name is the CLI name
	Name = "atlasman"
)

var flagProfile string

// Run runs the CLI
func Run() {
	// print commands in help/usage text in the order they are declared
	cobra.EnableCommandSorting = false

	cmd := &cobra.Command{
		Use:           Name,
		Short:         "Manage the MongoDB Atlas clusters provisioned for hackathon teams",
		Long:          fmt.Sprintf(`Use "%s [command] --help" for information on a specific command`, Name),
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().StringVar(&flagProfile, "profile", cli.DefaultProfile, "Specify the profile to use")

	cmd.AddCommand(cleanupCmd())
	cmd.AddCommand(reconcileCmd())
	cmd.AddCommand(clustersCmd())
	cmd.AddCommand(statusCmd())

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app bundles the wired services behind each command. The process entry
// point owns the database connection lifecycle, not the services.
type app struct {
	clusters cluster.Store
	guard    *auth.Guard

	provisioner *provision.Service
	reconciler  *reconcile.Service
	cleaner     *cleanup.Service
}

func setup(ctx context.Context) (*app, func(), error) {
	profile, err := cli.NewProfile(flagProfile)
	if err != nil {
		return nil, nil, err
	}
	if err := profile.Load(); err != nil {
		return nil, nil, err
	}

	logger := log.New(log.Config{
		Level:      profile.LogLevel(),
		JSONOutput: profile.LogJSON(),
	})

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(profile.MongoURI()))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to the platform database: %s", err)
	}
	if err := mongoClient.Ping(ctx, readpref.Primary()); err != nil {
		_ = mongoClient.Disconnect(ctx)
		return nil, nil, fmt.Errorf("failed to reach the platform database: %s", err)
	}

	db := mongoClient.Database(profile.MongoDatabase())

	clusters := cluster.NewStore(db)
	if err := clusters.EnsureIndexes(ctx); err != nil {
		_ = mongoClient.Disconnect(ctx)
		return nil, nil, fmt.Errorf("failed to ensure cluster indexes: %s", err)
	}

	events := platform.NewEventStore(db)
	teams := platform.NewTeamStore(db)

	atlasClient := atlas.NewAuthClient(profile.AtlasBaseURL(), profile.Credentials())

	provisioner := provision.NewService(atlasClient, clusters, events, logger)
	reconciler := reconcile.NewService(atlasClient, clusters, logger)
	cleaner := cleanup.NewService(events, clusters, provisioner, logger)

	// the CLI acts under an organizer-level service identity
	guard := auth.NewGuard(auth.StaticSession{
		Identity: auth.Identity{UserID: Name, Role: auth.RoleOrganizer},
	}, teams)

	teardown := func() {
		_ = mongoClient.Disconnect(context.Background())
	}

	return &app{
		clusters:    clusters,
		guard:       guard,
		provisioner: provisioner,
		reconciler:  reconciler,
		cleaner:     cleaner,
	}, teardown, nil
}
