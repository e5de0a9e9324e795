package routerdb

import (
	"context"
	"fmt"
	"os"

	"github.com/lintang-b-s/streetscan/pkg"
	"github.com/lintang-b-s/streetscan/pkg/datastructure"
	"github.com/lintang-b-s/streetscan/pkg/osmparser"
	"github.com/lintang-b-s/streetscan/pkg/profile"
	"github.com/lintang-b-s/streetscan/pkg/util"
	"go.uber.org/zap"
)

// GraphBuilder builds the router db of a vehicle from an OSM extract.
type GraphBuilder interface {
	Build(ctx context.Context, extractPath string, vehicle *profile.Vehicle) (*datastructure.RouterDb, error)
}

// Contractor adds the contracted index of a profile to a router db.
type Contractor interface {
	Contract(db *datastructure.RouterDb, profileName string) error
}

type OsmGraphBuilder struct {
	logger *zap.Logger
}

func NewOsmGraphBuilder(logger *zap.Logger) *OsmGraphBuilder {
	return &OsmGraphBuilder{logger: logger}
}

func (b *OsmGraphBuilder) Build(ctx context.Context, extractPath string, vehicle *profile.Vehicle) (*datastructure.RouterDb, error) {
	graph, err := osmparser.NewOSMParser(vehicle, b.logger).Parse(ctx, extractPath)
	if err != nil {
		return nil, err
	}
	return datastructure.NewRouterDb(vehicle.Name, vehicle.ProfileNames(), graph), nil
}

// Cache keeps one router db file per extract and profile next to the extract.
type Cache struct {
	vehicle    *profile.Vehicle
	builder    GraphBuilder
	contractor Contractor
	logger     *zap.Logger
}

func NewCache(vehicle *profile.Vehicle, builder GraphBuilder, contractor Contractor, logger *zap.Logger) *Cache {
	return &Cache{
		vehicle:    vehicle,
		builder:    builder,
		contractor: contractor,
		logger:     logger,
	}
}

// Path returns <extractPath>.<profileName>.routerdb.
func Path(extractPath, profileName string) string {
	return extractPath + "." + profileName + pkg.ROUTERDB_FILE_EXTENSION
}

// Load returns the router db of extractPath with the contracted index of
// profileName. A cached db is used unless it is older than the extract or
// cannot be read, in which case the db is rebuilt from the extract. The db is
// written back whenever the contracted index had to be built.
func (c *Cache) Load(ctx context.Context, extractPath, profileName string) (*datastructure.RouterDb, error) {
	if !c.vehicle.SupportProfile(profileName) {
		c.logger.Error("Profile not supported", zap.String("profile", profileName),
			zap.Strings("supported", c.vehicle.ProfileNames()))
		return nil, util.WrapErrorf(nil, util.ErrProfileUnsupported, "profile %s is not supported by vehicle %s",
			profileName, c.vehicle.Name)
	}

	cachePath := Path(extractPath, profileName)
	db := c.readCached(cachePath, extractPath)

	if db == nil {
		c.logger.Info("Building router db", zap.String("extract", extractPath))
		var err error
		db, err = c.builder.Build(ctx, extractPath, c.vehicle)
		if err != nil {
			return nil, fmt.Errorf("build router db from %s: %w", extractPath, err)
		}
	}

	if !db.SupportProfile(profileName) {
		return nil, util.WrapErrorf(nil, util.ErrProfileUnsupported, "router db does not support profile %s", profileName)
	}

	if !db.HasContractedFor(profileName) {
		c.logger.Warn("Building contracted graph", zap.String("profile", profileName))
		if err := c.contractor.Contract(db, profileName); err != nil {
			return nil, fmt.Errorf("contract %s: %w", profileName, err)
		}
		if err := writeRouterDb(db, cachePath); err != nil {
			return nil, fmt.Errorf("write router db %s: %w", cachePath, err)
		}
	}
	return db, nil
}

// readCached returns nil when there is no usable router db at cachePath.
func (c *Cache) readCached(cachePath, extractPath string) *datastructure.RouterDb {
	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		return nil
	}
	extractInfo, err := os.Stat(extractPath)
	if err == nil && cacheInfo.ModTime().Before(extractInfo.ModTime()) {
		c.logger.Warn("Router db is older than source data, rebuilding", zap.String("routerdb", cachePath))
		return nil
	}

	db, err := datastructure.ReadRouterDbFile(cachePath)
	if err != nil {
		c.logger.Error("Loading router db failed, rebuilding...", zap.String("routerdb", cachePath), zap.Error(err))
		return nil
	}
	c.logger.Info("Using existing router db", zap.String("routerdb", cachePath))
	return db
}

func writeRouterDb(db *datastructure.RouterDb, cachePath string) error {
	tmp := cachePath + pkg.TEMP_FILE_SUFFIX
	if err := db.WriteRouterDbFile(tmp); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, cachePath); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
