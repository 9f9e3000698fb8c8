package analytics

import (
	"log/slog"
	"net"

	"github.com/oschwald/maxminddb-golang"
)

// GeoResolver maps viewer IPs to a coarse location. With no database
// configured every lookup returns empty strings and watch events simply omit
// the location.
type GeoResolver struct {
	db *maxminddb.Reader
}

type geoRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
	City struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"city"`
}

func NewGeoResolver(dbPath string) (*GeoResolver, error) {
	if dbPath == "" {
		return &GeoResolver{}, nil
	}
	db, err := maxminddb.Open(dbPath)
	if err != nil {
		slog.Warn("geoip database unavailable, location lookups disabled", "path", dbPath, "error", err)
		return &GeoResolver{}, nil
	}
	slog.Info("geoip database loaded", "path", dbPath)
	return &GeoResolver{db: db}, nil
}

func (r *GeoResolver) Lookup(ipStr string) (country, city string) {
	if r == nil || r.db == nil || ipStr == "" {
		return "", ""
	}
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return "", ""
	}
	var rec geoRecord
	if err := r.db.Lookup(ip, &rec); err != nil {
		return "", ""
	}
	return rec.Country.ISOCode, rec.City.Names["en"]
}

func (r *GeoResolver) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
