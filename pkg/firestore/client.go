// Copyright 2025 MA-ISA Protocol
//
// Firestore Client
// Firebase Admin SDK client for mirroring audit data to Firestore

package firestore

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"

	gcpfirestore "cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// Client wraps the Firestore client behind an enabled gate. When disabled,
// every operation is a no-op so local deployments need no credentials.
type Client struct {
	app       *firebase.App
	firestore *gcpfirestore.Client
	projectID string
	logger    *log.Logger
	enabled   bool
	mu        sync.RWMutex
}

// ClientConfig holds configuration for the Firestore client.
type ClientConfig struct {
	// ProjectID is the Firebase/GCP project ID.
	ProjectID string

	// CredentialsFile is the path to the service account JSON file. If
	// empty, uses GOOGLE_APPLICATION_CREDENTIALS.
	CredentialsFile string

	// Enabled controls whether Firestore operations are performed.
	Enabled bool

	// Logger for client operations.
	Logger *log.Logger
}

// DefaultConfig returns a ClientConfig from environment variables.
func DefaultConfig() *ClientConfig {
	enabled, _ := strconv.ParseBool(os.Getenv("FIRESTORE_ENABLED"))
	return &ClientConfig{
		ProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
		CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		Enabled:         enabled,
		Logger:          log.New(os.Stdout, "[Firestore] ", log.LstdFlags),
	}
}

// NewClient creates a new Firestore client.
func NewClient(ctx context.Context, cfg *ClientConfig) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stdout, "[Firestore] ", log.LstdFlags)
	}

	client := &Client{
		projectID: cfg.ProjectID,
		logger:    cfg.Logger,
		enabled:   cfg.Enabled,
	}

	if !cfg.Enabled {
		client.logger.Println("disabled, operations will be no-ops")
		return client, nil
	}

	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("project ID is required when Firestore is enabled")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	client.app = app
	client.firestore = fs
	client.logger.Printf("connected to project %s", cfg.ProjectID)
	return client, nil
}

// IsEnabled returns whether operations reach Firestore.
func (c *Client) IsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled && c.firestore != nil
}

// Close releases the underlying Firestore client.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.firestore != nil {
		return c.firestore.Close()
	}
	return nil
}
