package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/uninav/wayfinder/internal/geo"
	"github.com/uninav/wayfinder/pkg/core"
)

// DefaultBucketNames are the InfluxDB buckets used by the kiosk runtime.
var DefaultBucketNames = []string{
	"kiosk_usage",
	"kiosk_performance",
}

// Manager handles InfluxDB connections and writes. When the server is
// unreachable, points go to a gzip backup file in line protocol instead.
type Manager struct {
	Client       influxdb2.Client
	Writers      map[string]influxdb2_api.WriteAPI
	BackupWriter *gzip.Writer
	IsValid      bool
	BucketNames  []string
	Logger       zerolog.Logger
	BackupPath   string

	kioskID    string
	referencer *geo.Referencer
}

// NewManager creates a new InfluxDB manager. referencer may be nil; route
// telemetry then omits geographic coordinates.
func NewManager(log zerolog.Logger, backupPath, kioskID string, referencer *geo.Referencer) *Manager {
	return &Manager{
		Writers:     make(map[string]influxdb2_api.WriteAPI),
		IsValid:     false,
		BucketNames: DefaultBucketNames,
		Logger:      log,
		BackupPath:  backupPath,
		kioskID:     kioskID,
		referencer:  referencer,
	}
}

// Connect establishes a connection to InfluxDB.
func (m *Manager) Connect() error {
	if !viper.GetBool("influx.enabled") {
		return errors.New("influx.enabled is false")
	}

	m.Client = influxdb2.NewClientWithOptions(
		fmt.Sprintf(
			"%s://%s:%s",
			viper.GetString("influx.protocol"),
			viper.GetString("influx.host"),
			viper.GetString("influx.port"),
		),
		viper.GetString("influx.token"),
		influxdb2.DefaultOptions().
			SetBatchSize(500).
			SetFlushInterval(1000),
	)

	// validate client connection health
	running, err := m.Client.Ping(context.Background())

	if err != nil || !running {
		m.IsValid = false
		// create backup writer
		if m.BackupWriter == nil {
			m.Logger.Info().Str("backupPath", m.BackupPath).
				Msg("Failed to initialize InfluxDB client, writing to backup file")

			file, err := os.OpenFile(m.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err != nil {
				return fmt.Errorf("error creating backup file: %v", err)
			}
			m.BackupWriter = gzip.NewWriter(file)
		}
	} else {
		m.IsValid = true
	}

	if m.IsValid {
		err = m.setupOrganizationAndBuckets()
		if err != nil {
			return err
		}
		m.CreateWriters()
		m.Logger.Info().Msg("InfluxDB client initialized")
	} else {
		m.Logger.Warn().Msg("InfluxDB client failed to initialize, using backup writer")
	}

	return nil
}

func (m *Manager) setupOrganizationAndBuckets() error {
	ctx := context.Background()
	orgName := viper.GetString("influx.org")

	// ensure org exists
	_, err := m.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err != nil {
		m.Logger.Info().Str("org", orgName).Msg("Organization not found, creating")
		_, err = m.Client.OrganizationsAPI().CreateOrganizationWithName(ctx, orgName)
		if err != nil {
			m.Logger.Error().Err(err).Str("org", orgName).Msg("Error creating organization")
			return err
		}
	}

	influxOrg, err := m.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err != nil {
		m.Logger.Error().Err(err).Str("org", orgName).Msg("Error getting organization")
		return err
	}

	// ensure buckets exist with 90 day retention
	for _, bucket := range m.BucketNames {
		_, err = m.Client.BucketsAPI().FindBucketByName(ctx, bucket)
		if err != nil {
			m.Logger.Info().Str("bucket", bucket).Msg("Bucket not found, creating")

			rule := domain.RetentionRuleTypeExpire
			_, err = m.Client.BucketsAPI().CreateBucketWithName(ctx, influxOrg, bucket, domain.RetentionRule{
				Type:         &rule,
				EverySeconds: 60 * 60 * 24 * 90, // 90 days
			})
			if err != nil {
				m.Logger.Error().Err(err).Str("bucket", bucket).Msg("Error creating bucket")
				return err
			}
		}
	}

	return nil
}

// CreateWriters creates write APIs for all configured buckets.
func (m *Manager) CreateWriters() {
	orgName := viper.GetString("influx.org")
	for _, bucket := range m.BucketNames {
		m.Writers[bucket] = m.Client.WriteAPI(orgName, bucket)

		errorsCh := m.Writers[bucket].Errors()
		go func(bucketName string, errorsCh <-chan error) {
			for writeErr := range errorsCh {
				m.Logger.Error().Err(writeErr).Str("bucket", bucketName).
					Msg("Error sending data to InfluxDB")
			}
		}(bucket, errorsCh)
	}

	m.Logger.Debug().Msg("InfluxDB writers initialized")
}

// WritePoint writes a point to InfluxDB or backup file.
func (m *Manager) WritePoint(bucket string, point *influxdb2_write.Point) error {
	if m.IsValid {
		if _, ok := m.Writers[bucket]; !ok {
			return fmt.Errorf("influxDB bucket '%s' not registered", bucket)
		}
		m.Writers[bucket].WritePoint(point)
	} else {
		if m.BackupWriter == nil {
			return fmt.Errorf("influxDB client not initialized and backup writer not available")
		}

		lineProtocol := influxdb2_write.PointToLineProtocol(point, time.Duration(1*time.Nanosecond))
		_, err := m.BackupWriter.Write([]byte(lineProtocol + "\n"))
		if err != nil {
			return fmt.Errorf("error writing to InfluxDB backup file: %s", err)
		}
	}

	return nil
}

// RecordSearch writes one search-served point: where to, whether a route was
// found, and how long the API round trip took.
func (m *Manager) RecordSearch(destination string, found bool, duration time.Duration) {
	point := influxdb2_write.NewPointWithMeasurement("search_served").
		AddTag("kiosk", m.kioskID).
		AddField("destination", destination).
		AddField("found", found).
		AddField("duration_ms", float64(duration.Milliseconds())).
		SetTime(time.Now())

	if err := m.WritePoint("kiosk_usage", point); err != nil {
		m.Logger.Error().Err(err).Msg("Error recording search telemetry")
	}
}

// RecordCacheFallback writes one offline-fallback point for a resource.
func (m *Manager) RecordCacheFallback(resource string) {
	point := influxdb2_write.NewPointWithMeasurement("cache_fallback").
		AddTag("kiosk", m.kioskID).
		AddTag("resource", resource).
		AddField("count", 1).
		SetTime(time.Now())

	if err := m.WritePoint("kiosk_performance", point); err != nil {
		m.Logger.Error().Err(err).Msg("Error recording cache fallback telemetry")
	}
}

// RecordRoute writes route statistics. When a geo referencer is configured,
// the destination's real-world coordinates are attached for campus-wide
// usage maps.
func (m *Manager) RecordRoute(r core.Route) {
	point := influxdb2_write.NewPointWithMeasurement("route_served").
		AddTag("kiosk", m.kioskID).
		AddField("total_distance", r.TotalDistance).
		AddField("floor_changes", r.FloorChanges).
		AddField("estimated_minutes", r.EstimatedTimeMinutes).
		AddField("steps", len(r.Path)).
		SetTime(time.Now())

	if m.referencer != nil && len(r.Path) > 0 {
		dest := r.Path[len(r.Path)-1]
		lon, lat := m.referencer.ToWGS84(dest.Position())
		point.AddField("dest_lon", lon)
		point.AddField("dest_lat", lat)
	}

	if err := m.WritePoint("kiosk_usage", point); err != nil {
		m.Logger.Error().Err(err).Msg("Error recording route telemetry")
	}
}

// Close flushes writers and the backup file.
func (m *Manager) Close() {
	if m.IsValid && m.Client != nil {
		for _, w := range m.Writers {
			w.Flush()
		}
		m.Client.Close()
	}
	if m.BackupWriter != nil {
		if err := m.BackupWriter.Close(); err != nil {
			m.Logger.Error().Err(err).Msg("Error closing InfluxDB backup writer")
		}
	}
}
