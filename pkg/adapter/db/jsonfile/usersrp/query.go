// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package usersrp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/momeni/ryde/pkg/adapter/db/jsonfile"
	"github.com/momeni/ryde/pkg/adapter/db/jsonfile/ratingsrp"
	"github.com/momeni/ryde/pkg/core/cerr"
	"github.com/momeni/ryde/pkg/core/model"
)

// File is the name of the users snapshot file.
const File = "users.json"

// jUser is the flat persisted form of both user variants. The UserType
// discriminator tells which variant specific fields are relevant and
// the other variant fields are omitted when a record is written.
type jUser struct {
	UserType        string             `json:"UserType"`
	ID              int                `json:"Id"`
	Username        string             `json:"Username"`
	Password        string             `json:"Password"`
	Email           string             `json:"Email"`
	PhoneNumber     string             `json:"PhoneNumber"`
	CreatedAt       time.Time          `json:"CreatedAt"`
	IsActive        bool               `json:"IsActive"`
	ReceivedRatings []ratingsrp.Record `json:"ReceivedRatings"`

	// Passenger fields
	WalletBalance          *model.Money `json:"WalletBalance,omitempty"`
	PreferredPaymentMethod string       `json:"PreferredPaymentMethod,omitempty"`
	RideHistory            []int        `json:"RideHistory,omitempty"`

	// Driver fields
	IsAvailable     *bool        `json:"IsAvailable,omitempty"`
	LicenseNumber   string       `json:"LicenseNumber,omitempty"`
	VehicleInfo     string       `json:"VehicleInfo,omitempty"`
	TotalEarnings   *model.Money `json:"TotalEarnings,omitempty"`
	CompletedRides  []int        `json:"CompletedRides,omitempty"`
	CurrentLocation *jCoordinate `json:"CurrentLocation,omitempty"`
	LocationName    string       `json:"LocationName,omitempty"`
}

type jCoordinate struct {
	Latitude  float64 `json:"Latitude"`
	Longitude float64 `json:"Longitude"`
}

var users = &jsonfile.Collection[jUser]{
	File:  File,
	ID:    func(u *jUser) *int { return &u.ID },
	Check: (*jUser).Check,
}

// Check verifies the discriminator of ju. Unknown discriminators are
// reported as an unsupported variant error, failing the whole load.
func (ju *jUser) Check() error {
	if _, err := model.ParseUserType(ju.UserType); err != nil {
		return cerr.UnsupportedVariant(fmt.Errorf(
			"user #%d has %q type: %w", ju.ID, ju.UserType, err,
		))
	}
	return nil
}

// Model reconstructs the variant of ju which is indicated by its
// UserType discriminator.
func (ju *jUser) Model() (*model.User, error) {
	ut, err := model.ParseUserType(ju.UserType)
	if err != nil {
		return nil, cerr.UnsupportedVariant(fmt.Errorf(
			"user #%d has %q type: %w", ju.ID, ju.UserType, err,
		))
	}
	u := &model.User{
		ID:        ju.ID,
		Username:  ju.Username,
		Password:  ju.Password,
		Email:     ju.Email,
		Phone:     ju.PhoneNumber,
		CreatedAt: ju.CreatedAt,
		IsActive:  ju.IsActive,
		Type:      ut,
	}
	for i := range ju.ReceivedRatings {
		u.ReceivedRatings = append(
			u.ReceivedRatings, ju.ReceivedRatings[i].Model(),
		)
	}
	switch ut {
	case model.UserTypePassenger:
		p := &model.Passenger{
			PreferredPaymentMethod: ju.PreferredPaymentMethod,
			RideHistory:            append([]int(nil), ju.RideHistory...),
		}
		if ju.WalletBalance != nil {
			p.WalletBalance = *ju.WalletBalance
		}
		u.Passenger = p
	case model.UserTypeDriver:
		d := &model.Driver{
			LicenseNumber:  ju.LicenseNumber,
			VehicleInfo:    ju.VehicleInfo,
			CompletedRides: append([]int(nil), ju.CompletedRides...),
			LocationName:   ju.LocationName,
		}
		if ju.IsAvailable != nil {
			d.IsAvailable = *ju.IsAvailable
		}
		if ju.TotalEarnings != nil {
			d.TotalEarnings = *ju.TotalEarnings
		}
		if c := ju.CurrentLocation; c != nil {
			d.CurrentLocation = model.Coordinate{
				Lat: c.Latitude, Lon: c.Longitude,
			}
		}
		u.Driver = d
	}
	return u, nil
}

func fromModel(u *model.User) (jUser, error) {
	if err := u.Validate(); err != nil {
		return jUser{}, cerr.UnsupportedVariant(
			fmt.Errorf("user #%d: %w", u.ID, err),
		)
	}
	ju := jUser{
		UserType:    u.Type.String(),
		ID:          u.ID,
		Username:    u.Username,
		Password:    u.Password,
		Email:       u.Email,
		PhoneNumber: u.Phone,
		CreatedAt:   u.CreatedAt,
		IsActive:    u.IsActive,
	}
	ju.ReceivedRatings = make([]ratingsrp.Record, 0, len(u.ReceivedRatings))
	for i := range u.ReceivedRatings {
		ju.ReceivedRatings = append(
			ju.ReceivedRatings, ratingsrp.FromModel(&u.ReceivedRatings[i]),
		)
	}
	switch u.Type {
	case model.UserTypePassenger:
		p := u.Passenger
		wb := p.WalletBalance
		ju.WalletBalance = &wb
		ju.PreferredPaymentMethod = p.PreferredPaymentMethod
		ju.RideHistory = append([]int(nil), p.RideHistory...)
	case model.UserTypeDriver:
		d := u.Driver
		avail, earnings := d.IsAvailable, d.TotalEarnings
		ju.IsAvailable = &avail
		ju.LicenseNumber = d.LicenseNumber
		ju.VehicleInfo = d.VehicleInfo
		ju.TotalEarnings = &earnings
		ju.CompletedRides = append([]int(nil), d.CompletedRides...)
		ju.CurrentLocation = &jCoordinate{
			Latitude:  d.CurrentLocation.Lat,
			Longitude: d.CurrentLocation.Lon,
		}
		ju.LocationName = d.LocationName
	}
	return ju, nil
}

func List[Q jsonfile.Queryer](ctx context.Context, q Q) ([]*model.User, error) {
	jus, err := jsonfile.LoadAll(ctx, q, users)
	if err != nil {
		return nil, err
	}
	us := make([]*model.User, 0, len(jus))
	for i := range jus {
		u, err := jus[i].Model()
		if err != nil {
			return nil, err
		}
		us = append(us, u)
	}
	return us, nil
}

func ByID[Q jsonfile.Queryer](ctx context.Context, q Q, id int) (*model.User, error) {
	ju, err := jsonfile.FindByID(ctx, q, users, id)
	if err != nil {
		return nil, err
	}
	return ju.Model()
}

func ByUsername[Q jsonfile.Queryer](ctx context.Context, q Q, username string) (*model.User, error) {
	ju, err := jsonfile.FindByUnique(
		ctx, q, users,
		func(u *jUser) string { return u.Username },
		username, model.SameUsername,
	)
	if err != nil {
		return nil, err
	}
	return ju.Model()
}

func Add(ctx context.Context, tx *jsonfile.Tx, u *model.User) (*model.User, error) {
	username := strings.TrimSpace(u.Username)
	if username == "" {
		return nil, cerr.Validation(fmt.Errorf("empty username"))
	}
	_, err := ByUsername(ctx, tx, username)
	switch {
	case err == nil:
		return nil, cerr.Conflict(fmt.Errorf(
			"username %q is already taken", username,
		))
	case !cerr.Is(err, cerr.KindNotFound):
		return nil, err
	}
	u = u.Clone()
	u.Username = username
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	ju, err := fromModel(u)
	if err != nil {
		return nil, err
	}
	if ju, err = jsonfile.AddOne(ctx, tx, users, ju); err != nil {
		return nil, err
	}
	return ju.Model()
}

func Update(ctx context.Context, tx *jsonfile.Tx, u *model.User) error {
	ju, err := fromModel(u)
	if err != nil {
		return err
	}
	return jsonfile.UpdateOne(ctx, tx, users, ju)
}

func SaveAll(ctx context.Context, tx *jsonfile.Tx, us []*model.User) error {
	jus := make([]jUser, 0, len(us))
	for _, u := range us {
		ju, err := fromModel(u)
		if err != nil {
			return err
		}
		jus = append(jus, ju)
	}
	return jsonfile.SaveAll(ctx, tx, users, jus)
}
