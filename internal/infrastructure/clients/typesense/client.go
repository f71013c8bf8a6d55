package typesense

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/zatekoja/wayfinder/pkg/config"
	"github.com/zatekoja/wayfinder/pkg/retry"
)

const (
	PlacesCollection = "places"
)

// Client represents a Typesense client
type Client struct {
	client *typesense.Client
}

// NewClient creates a new Typesense client with exponential backoff retry
func NewClient(cfg *config.TypesenseConfig) (*Client, error) {
	client := typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)

	// Test connection with retry
	retryConfig := retry.DefaultConfig()
	err := retry.DoWithLog(
		context.Background(),
		retryConfig,
		"Typesense",
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_, err := client.Health(ctx, 2*time.Second)
			return err
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("next_delay", nextDelay).Msg("Typesense connection attempt failed")
		},
	)

	if err != nil {
		return nil, fmt.Errorf("failed to connect to Typesense after retries: %w", err)
	}

	log.Info().Str("url", cfg.URL).Msg("Successfully connected to Typesense")
	return &Client{client: client}, nil
}

// Client returns the underlying Typesense client
func (c *Client) Client() *typesense.Client {
	return c.client
}

// InitSchema ensures the places collection exists
func (c *Client) InitSchema(ctx context.Context) error {
	collections, err := c.client.Collections().Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve collections: %w", err)
	}

	for _, col := range collections {
		if col.Name == PlacesCollection {
			log.Debug().Str("collection", PlacesCollection).Msg("Typesense collection already exists")
			return nil
		}
	}

	schema := &api.CollectionSchema{
		Name: PlacesCollection,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "place_name", Type: "string"},
			{Name: "category_name", Type: "string", Optional: pointer.True()},
			{Name: "category_group_code", Type: "string", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "address_name", Type: "string", Optional: pointer.True()},
			{Name: "road_address_name", Type: "string", Optional: pointer.True()},
			{Name: "phone", Type: "string", Optional: pointer.True(), Index: pointer.False()},
			{Name: "place_url", Type: "string", Optional: pointer.True(), Index: pointer.False()},
			{Name: "location", Type: "geopoint", Optional: pointer.True()},
			{Name: "indexed_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("indexed_at"),
	}

	_, err = c.client.Collections().Create(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Info().Str("collection", PlacesCollection).Msg("Created Typesense collection")
	return nil
}

// UpsertPlace indexes a place document
func (c *Client) UpsertPlace(ctx context.Context, document map[string]interface{}) error {
	_, err := c.client.Collection(PlacesCollection).Documents().Upsert(ctx, document)
	return err
}

// DropPlaces deletes the places collection; InitSchema recreates it
func (c *Client) DropPlaces(ctx context.Context) error {
	if _, err := c.client.Collection(PlacesCollection).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", PlacesCollection, err)
	}
	return nil
}
