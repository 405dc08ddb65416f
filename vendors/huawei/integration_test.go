//go:build integration

package huawei_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/nanoncore/olt-console/drivers/cli"
	"github.com/nanoncore/olt-console/types"
	"github.com/nanoncore/olt-console/vendors/huawei"
)

// Read-only checks against a real OLT:
//
//	OLT_HOST=10.0.0.1 OLT_USERNAME=... OLT_PASSWORD=... go test -tags integration ./vendors/huawei/
func newLiveOlt(t *testing.T) *huawei.Olt {
	t.Helper()
	host := os.Getenv("OLT_HOST")
	if host == "" {
		t.Skip("OLT_HOST not set")
	}
	driver, err := cli.NewDriver(&types.EquipmentConfig{
		Address:  host,
		Username: os.Getenv("OLT_USERNAME"),
		Password: os.Getenv("OLT_PASSWORD"),
		Timeout:  30 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewDriver() error: %v", err)
	}
	olt := huawei.NewOlt(host, driver)
	t.Cleanup(func() { olt.Close() })
	return olt
}

func TestLiveVersion(t *testing.T) {
	olt := newLiveOlt(t)
	info, err := olt.GetVersion(context.Background())
	if err != nil {
		t.Fatalf("GetVersion() error: %v", err)
	}
	if info["version"] == "" {
		t.Errorf("Expected a version, got %v", info)
	}
	if _, ok := info.Uptime(); !ok {
		t.Error("Expected uptime")
	}
}

func TestLiveModeRoundTrip(t *testing.T) {
	olt := newLiveOlt(t)
	ctx := context.Background()

	if _, err := olt.GetVersion(ctx); err != nil {
		t.Fatalf("GetVersion() error: %v", err)
	}
	modes := olt.Modes()
	for _, m := range []types.Mode{types.ModeConfig, types.ModeEnable, types.ModeUser, types.ModeConfig} {
		if err := modes.EnsureMode(ctx, m); err != nil {
			t.Fatalf("EnsureMode(%s) error: %v", m, err)
		}
		if modes.Mode() != m {
			t.Errorf("Expected %s, got %s", m, modes.Mode())
		}
	}
}

func TestLiveInventory(t *testing.T) {
	olt := newLiveOlt(t)
	records, err := olt.GetOnuInventory(context.Background(), types.InventoryFilter{})
	if err != nil {
		t.Fatalf("GetOnuInventory() error: %v", err)
	}
	if records == nil {
		t.Fatal("Inventory failed, see log")
	}
	if len(records) == 0 {
		t.Skip("no ONTs registered")
	}

	var rec types.OnuRecord
	for _, r := range records {
		rec = r
	}
	found, err := olt.GetOnuBySerial(context.Background(), rec.Serial)
	if err != nil {
		t.Fatalf("GetOnuBySerial() error: %v", err)
	}
	if found == nil || found.PONPort() != rec.PONPort() {
		t.Errorf("Lookup of %s = %+v, inventory says %s", rec.Serial, found, rec.PONPort())
	}
}
