// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package cfg1 contains the v1.x.y configuration settings format.
// The Config struct is loaded from a YAML file, validated and filled
// with defaults, and then used for instantiating the storage pool, the
// geo calculator, and the use cases with their functional options.
package cfg1

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/momeni/ryde/pkg/adapter/config/settings"
	"github.com/momeni/ryde/pkg/adapter/config/vers"
	"github.com/momeni/ryde/pkg/adapter/db/jsonfile"
	"github.com/momeni/ryde/pkg/adapter/geo"
	"github.com/momeni/ryde/pkg/adapter/hash/scram"
	"github.com/momeni/ryde/pkg/adapter/restful/gin"
	"github.com/momeni/ryde/pkg/adapter/restful/gin/authrs"
	"github.com/momeni/ryde/pkg/core/model"
	"github.com/momeni/ryde/pkg/core/repo"
	"github.com/momeni/ryde/pkg/core/usecase/ratingsuc"
	"github.com/momeni/ryde/pkg/core/usecase/reportuc"
	"github.com/momeni/ryde/pkg/core/usecase/ridesuc"
	"github.com/momeni/ryde/pkg/core/usecase/seeduc"
	"github.com/momeni/ryde/pkg/core/usecase/usersuc"
	"gopkg.in/yaml.v3"
)

// These constants define the major, minor, and patch version of the
// configuration settings which are supported by the Config struct.
const (
	Major = 1
	Minor = 0
	Patch = 0
)

// Version is the semantic version of Config struct.
var Version = model.SemVer{Major, Minor, Patch}

// DataDirEnv names the environment variable which overrides the
// storage.data-dir setting.
const DataDirEnv = "RYDE_DATA_DIR"

// Default values of the settings which are owned by the adapters layer.
// Use case settings take their defaults from the use cases themselves.
const (
	DefaultDataDir     = "./data"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultHTTPAddress = ":8080"
	DefaultReadTimeout = Duration(15 * time.Second)
	DefaultTokenTTL    = Duration(time.Hour)
)

// Duration is re-exported for brevity of the default values.
type Duration = settings.Duration

// Config contains all settings of the ryde components following the
// v1.x.y format. Fields are kept as pointers when a missing value has
// to be told apart from a zero value.
type Config struct {
	Storage   Storage    // Snapshot files location
	Admin     Admin      // Administrator credentials
	Usecases  Usecases   // Supported use cases configuration settings
	Reports   Reports    // System report settings
	Locations []Location // Extra named locations for the gazetteer
	Logging   Logging    // Default slog handler settings
	HTTP      HTTP       `yaml:"http"` // REST API server settings

	// Vers contains the configuration file version.
	Vers vers.Config `yaml:",inline"`
}

// Storage contains the JSON snapshot files settings.
type Storage struct {
	DataDir *string `yaml:"data-dir"`
}

// Admin contains the administrator credentials. The password may be
// a SCRAM hash, as produced by the hash-password command, or plaintext.
type Admin struct {
	Username *string `yaml:",omitempty"`
	Password *string `yaml:",omitempty"`
}

// Usecases contains the configuration settings for all use cases.
type Usecases struct {
	Rides   Rides
	Users   Users
	Ratings Ratings
}

// Rides contains the rides use case settings.
type Rides struct {
	BaseFare  *float64 `yaml:"base-fare,omitempty"`
	PerKmRate *float64 `yaml:"per-km-rate,omitempty"`

	// MatchRadiusKm is the maximum distance between a pickup location
	// and a driver which is considered during matching.
	MatchRadiusKm *float64 `yaml:"match-radius-km,omitempty"`
	// MinMatchRadiusKm is the inclusive minimum acceptable value
	// for the MatchRadiusKm setting.
	// A missing value indicates that there is no lower bound.
	MinMatchRadiusKm *float64 `yaml:"match-radius-km-minimum,omitempty"`
	// MaxMatchRadiusKm is the inclusive maximum acceptable value
	// for the MatchRadiusKm setting.
	// A missing value indicates that there is no upper bound.
	MaxMatchRadiusKm *float64 `yaml:"match-radius-km-maximum,omitempty"`
}

// Users contains the users use case settings.
type Users struct {
	InitialWallet  *float64 `yaml:"initial-wallet,omitempty"`
	HashPasswords  *bool    `yaml:"hash-passwords,omitempty"`
	HashIterations *int     `yaml:"hash-iterations,omitempty"`
}

// Ratings contains the ratings use case settings.
type Ratings struct {
	FlagThreshold  *float64 `yaml:"flag-threshold,omitempty"`
	FlagMinRatings *int     `yaml:"flag-min-ratings,omitempty"`
}

// Reports contains the system report settings.
type Reports struct {
	TopN *int `yaml:"top-n,omitempty"`
}

// Location is an extra named location. Entries having the same name
// as a builtin location replace it.
type Location struct {
	Name string
	Lat  float64
	Lon  float64
}

// Logging contains the default slog handler settings.
type Logging struct {
	Level  *string // debug, info, warn, or error
	Format *string // text or json
	File   *string `yaml:",omitempty"` // empty for stderr
}

// HTTP contains the settings of the REST API server.
type HTTP struct {
	Address     *string
	Logger      *bool     // Whether to register the request logger
	Recovery    *bool     // Whether to register the panic recovery
	ReadTimeout *Duration `yaml:"read-timeout"`
	JWTSecret   *string   `yaml:"jwt-secret"`
	TokenTTL    *Duration `yaml:"token-ttl"`
}

// Load unmarshals the data byte slice as a Config instance. Missing
// items take their default values and the loaded Config is validated,
// so the major version which is reported by data must be 1.
// The DataDirEnv environment variable, if set, overrides the data
// directory of the configuration file.
func Load(data []byte) (*Config, error) {
	c := &Config{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("unmarshalling yaml: %w", err)
	}
	if dir, ok := os.LookupEnv(DataDirEnv); ok && dir != "" {
		c.Storage.DataDir = &dir
	}
	if err := c.ValidateAndNormalize(); err != nil {
		return nil, fmt.Errorf("validating configs: %w", err)
	}
	return c, nil
}

// ValidateAndNormalize validates the configuration settings and
// returns an error if they were not acceptable. Missing settings of
// the adapters layer take their default values, while missing use case
// settings are left nil, so the use cases pick their own defaults.
func (c *Config) ValidateAndNormalize() error {
	if err := c.Vers.Validate(Major, Minor); err != nil {
		return fmt.Errorf(
			"expecting version v%d.%d: %w", Major, Minor, err,
		)
	}
	settings.Default(&c.Storage.DataDir, DefaultDataDir)
	if strings.TrimSpace(*c.Storage.DataDir) == "" {
		return errors.New("storage.data-dir must not be empty")
	}
	if (c.Admin.Username == nil) != (c.Admin.Password == nil) {
		return errors.New("admin username and password go together")
	}
	if err := c.Usecases.validate(); err != nil {
		return err
	}
	if n := c.Reports.TopN; n != nil && *n <= 0 {
		return fmt.Errorf("reports.top-n (%d) must be positive", *n)
	}
	for i, l := range c.Locations {
		err := l.validate()
		if err != nil {
			return fmt.Errorf("locations[%d]: %w", i, err)
		}
	}
	if err := c.Logging.validateAndNormalize(); err != nil {
		return fmt.Errorf("validating logging settings: %w", err)
	}
	c.HTTP.normalize()
	return nil
}

func (u *Usecases) validate() error {
	r := &u.Rides
	if err := settings.VerifyRange(
		&r.MatchRadiusKm, r.MinMatchRadiusKm, r.MaxMatchRadiusKm,
	); err != nil {
		return fmt.Errorf(
			"VerifyRange(match radius=%v, minb=%v, maxb=%v): %w",
			settings.Value(err.Value),
			settings.Value(r.MinMatchRadiusKm),
			settings.Value(r.MaxMatchRadiusKm),
			err,
		)
	}
	for name, v := range map[string]*float64{
		"base-fare":       r.BaseFare,
		"per-km-rate":     r.PerKmRate,
		"match-radius-km": r.MatchRadiusKm,
		"initial-wallet":  u.Users.InitialWallet,
		"flag-threshold":  u.Ratings.FlagThreshold,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s (%v) is negative", name, *v)
		}
	}
	if n := u.Users.HashIterations; n != nil && *n < 4096 {
		return fmt.Errorf("hash-iterations (%d) is less than 4096", *n)
	}
	if t := u.Ratings.FlagThreshold; t != nil && *t > 5 {
		return fmt.Errorf("flag-threshold (%v) is above 5 stars", *t)
	}
	if n := u.Ratings.FlagMinRatings; n != nil && *n <= 0 {
		return fmt.Errorf("flag-min-ratings (%d) must be positive", *n)
	}
	return nil
}

func (l Location) validate() error {
	switch {
	case strings.TrimSpace(l.Name) == "":
		return errors.New("name is required")
	case l.Lat < -90 || l.Lat > 90:
		return fmt.Errorf("lat (%v) is out of range", l.Lat)
	case l.Lon < -180 || l.Lon > 180:
		return fmt.Errorf("lon (%v) is out of range", l.Lon)
	}
	return nil
}

func (l *Logging) validateAndNormalize() error {
	settings.Default(&l.Level, DefaultLogLevel)
	settings.Default(&l.Format, DefaultLogFormat)
	settings.Nil2Zero(&l.File)
	if _, err := l.level(); err != nil {
		return err
	}
	switch *l.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", *l.Format)
	}
	return nil
}

func (l *Logging) level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(*l.Level)); err != nil {
		return 0, fmt.Errorf("parsing log level: %w", err)
	}
	return lvl, nil
}

// NewLogger creates a slog logger based on the `l` settings.
// The returned closer must be called when the logger is not needed
// anymore. It closes the log file, if any.
func (l *Logging) NewLogger() (*slog.Logger, io.Closer, error) {
	lvl, err := l.level()
	if err != nil {
		return nil, nil, err
	}
	var w io.WriteCloser = nopCloser{os.Stderr}
	if f := settings.Value(l.File); f != "" {
		w, err = os.OpenFile(f, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
	}
	opts := &slog.HandlerOptions{Level: lvl, AddSource: lvl < slog.LevelInfo}
	var h slog.Handler
	if *l.Format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h), w, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}

func (h *HTTP) normalize() {
	settings.Default(&h.Address, DefaultHTTPAddress)
	settings.Default(&h.Logger, true)
	settings.Default(&h.Recovery, true)
	settings.Default(&h.ReadTimeout, DefaultReadTimeout)
	settings.Default(&h.TokenTTL, DefaultTokenTTL)
	settings.Nil2Zero(&h.JWTSecret)
}

// NewEngine instantiates a gin engine with the request logger and
// the panic recovery middlewares, as configured, logging through l.
func (h *HTTP) NewEngine(l *slog.Logger) *gin.Engine {
	var middlewares []gin.HandlerFunc
	if settings.Value(h.Logger) {
		middlewares = append(middlewares, gin.Logger(l))
	}
	if settings.Value(h.Recovery) {
		middlewares = append(middlewares, gin.Recovery(l))
	}
	return gin.New(middlewares...)
}

// NewIssuer creates the signer and verifier of the admin tokens.
// It fails if the jwt-secret setting is left empty.
func (h *HTTP) NewIssuer() (*authrs.Issuer, error) {
	return authrs.NewIssuer(
		settings.Value(h.JWTSecret), h.TokenTTL.Std(),
	)
}

// NewServer creates an HTTP server which serves handler on the
// configured address.
func (h *HTTP) NewServer(handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              settings.Value(h.Address),
		Handler:           handler,
		ReadHeaderTimeout: h.ReadTimeout.Std(),
		ReadTimeout:       h.ReadTimeout.Std(),
	}
}

// ConnectionPool creates the JSON snapshot files pool in the data
// directory, creating that directory if it is missing.
func (c *Config) ConnectionPool() (*jsonfile.Pool, error) {
	p, err := jsonfile.NewPool(*c.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf(
			"jsonfile.NewPool(%q): %w", *c.Storage.DataDir, err,
		)
	}
	return p, nil
}

// NewCalculator creates the geo distance calculator which knows about
// the builtin and configured locations.
func (c *Config) NewCalculator() *geo.Calculator {
	extra := make([]model.Location, 0, len(c.Locations))
	for _, l := range c.Locations {
		extra = append(extra, model.Location{
			Name: strings.TrimSpace(l.Name),
			Coordinate: model.Coordinate{
				Lat: l.Lat, Lon: l.Lon,
			},
		})
	}
	return geo.NewCalculator(geo.NewGazetteer(extra...), geo.DefaultFallback)
}

// NewRidesUseCase instantiates a rides use case based on the settings
// in the c struct. The extra options, such as a metrics observer, are
// appended to the configured ones.
func (c *Config) NewRidesUseCase(
	p repo.Pool, u repo.Users, r repo.Rides,
	dc ridesuc.DistanceCalculator, extra ...ridesuc.Option,
) (*ridesuc.UseCase, error) {
	rc := c.Usecases.Rides
	opts := make([]ridesuc.Option, 0, 2+len(extra))
	if fs := c.fareSchedule(); fs != nil {
		opts = append(opts, ridesuc.WithFareSchedule(*fs))
	}
	if rc.MatchRadiusKm != nil {
		opts = append(opts, ridesuc.WithMatchRadius(*rc.MatchRadiusKm))
	}
	opts = append(opts, extra...)
	return ridesuc.New(p, u, r, dc, opts...)
}

// fareSchedule returns the configured fare schedule, or nil if both
// of the fare settings are left to their defaults.
func (c *Config) fareSchedule() *model.FareSchedule {
	rc := c.Usecases.Rides
	if rc.BaseFare == nil && rc.PerKmRate == nil {
		return nil
	}
	fs := model.DefaultFareSchedule
	if rc.BaseFare != nil {
		fs.Base = model.NewMoney(*rc.BaseFare)
	}
	if rc.PerKmRate != nil {
		fs.PerKm = model.NewMoney(*rc.PerKmRate)
	}
	return &fs
}

// NewUsersUseCase instantiates a users use case. Logins are checked
// by the SCRAM-SHA-256 checker which accepts both of the hashed and
// plaintext stored passwords.
func (c *Config) NewUsersUseCase(
	p repo.Pool, u repo.Users, r repo.Rides, l usersuc.Locator,
) (*usersuc.UseCase, error) {
	uc := c.Usecases.Users
	mech := scram.SHA256()
	opts := make([]usersuc.Option, 0, 3)
	if c.Admin.Username != nil {
		opts = append(opts, usersuc.WithAdmin(usersuc.AdminCredentials{
			Username: *c.Admin.Username,
			Password: *c.Admin.Password,
		}))
	}
	if uc.InitialWallet != nil {
		opts = append(opts, usersuc.WithInitialWallet(
			model.NewMoney(*uc.InitialWallet),
		))
	}
	if iters, ok := c.hashIterations(); ok {
		opts = append(opts, usersuc.WithPasswordHasher(mech, iters))
	}
	return usersuc.New(p, u, r, l, mech, opts...)
}

// hashIterations returns the SCRAM iterations count and true if the
// passwords must be stored as hash strings.
func (c *Config) hashIterations() (int, bool) {
	uc := c.Usecases.Users
	if !settings.Value(uc.HashPasswords) {
		return 0, false
	}
	if uc.HashIterations != nil {
		return *uc.HashIterations, true
	}
	return scram.DefaultIters, true
}

// NewRatingsUseCase instantiates a ratings use case.
func (c *Config) NewRatingsUseCase(
	p repo.Pool, u repo.Users, r repo.Rides, rt repo.Ratings,
) (*ratingsuc.UseCase, error) {
	rc := c.Usecases.Ratings
	var opts []ratingsuc.Option
	if rc.FlagThreshold != nil || rc.FlagMinRatings != nil {
		threshold := ratingsuc.DefaultFlagThreshold
		if rc.FlagThreshold != nil {
			threshold = *rc.FlagThreshold
		}
		minRatings := ratingsuc.DefaultFlagMinRatings
		if rc.FlagMinRatings != nil {
			minRatings = *rc.FlagMinRatings
		}
		opts = append(opts, ratingsuc.WithFlagging(threshold, minRatings))
	}
	return ratingsuc.New(p, u, r, rt, opts...)
}

// NewReportsUseCase instantiates a reports use case.
func (c *Config) NewReportsUseCase(
	p repo.Pool, u repo.Users, r repo.Rides,
) (*reportuc.UseCase, error) {
	var opts []reportuc.Option
	if c.Reports.TopN != nil {
		opts = append(opts, reportuc.WithTopN(*c.Reports.TopN))
	}
	return reportuc.New(p, u, r, opts...)
}

// NewSeedUseCase instantiates a seed use case which uses the same fare
// schedule and password hashing settings as the rides and users use
// cases.
func (c *Config) NewSeedUseCase(
	p repo.Pool, u repo.Users, r repo.Rides, rt repo.Ratings,
	l seeduc.Locator,
) (*seeduc.UseCase, error) {
	var opts []seeduc.Option
	if fs := c.fareSchedule(); fs != nil {
		opts = append(opts, seeduc.WithFareSchedule(*fs))
	}
	if iters, ok := c.hashIterations(); ok {
		opts = append(opts, seeduc.WithPasswordHasher(scram.SHA256(), iters))
	}
	return seeduc.New(p, u, r, rt, l, opts...)
}

// Marshalled struct mirrors the Config struct, replacing the fields
// which need a specific serialization format by their primitive
// representation.
type Marshalled struct {
	Storage   Storage
	Admin     Admin
	Usecases  Usecases
	Reports   Reports
	Locations []Location `yaml:",omitempty"`
	Logging   Logging
	HTTP      struct {
		Address     *string
		Logger      *bool
		Recovery    *bool
		ReadTimeout *string `yaml:"read-timeout,omitempty"`
		JWTSecret   *string `yaml:"jwt-secret,omitempty"`
		TokenTTL    *string `yaml:"token-ttl,omitempty"`
	} `yaml:"http"`
	Vers *vers.Marshalled `yaml:",inline"`
}

// MarshalYAML replaces `c` by its Marshalled form, so durations and
// versions are written in their human-readable formats.
func (c *Config) MarshalYAML() (interface{}, error) {
	return c.Marshal(), nil
}

// Marshal creates an instance of the Marshalled struct and fills it
// with the `c` Config instance contents.
func (c *Config) Marshal() *Marshalled {
	m := &Marshalled{
		Storage:   c.Storage,
		Admin:     c.Admin,
		Usecases:  c.Usecases,
		Reports:   c.Reports,
		Locations: c.Locations,
		Logging:   c.Logging,
	}
	m.HTTP.Address = c.HTTP.Address
	m.HTTP.Logger = c.HTTP.Logger
	m.HTTP.Recovery = c.HTTP.Recovery
	m.HTTP.ReadTimeout = c.HTTP.ReadTimeout.Marshal()
	m.HTTP.JWTSecret = c.HTTP.JWTSecret
	m.HTTP.TokenTTL = c.HTTP.TokenTTL.Marshal()
	m.Vers = c.Vers.Marshal()
	return m
}

// Version returns the semantic version of this Config struct contents.
func (c *Config) Version() model.SemVer {
	return c.Vers.Versions.Config
}
