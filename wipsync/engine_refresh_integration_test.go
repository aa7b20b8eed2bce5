package wipsync_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/texfocus/wiptrack_backend/config"
	"github.com/texfocus/wiptrack_backend/models"
	"github.com/texfocus/wiptrack_backend/wipsync"
	"gorm.io/gorm"
)

// Full-stack regression: a failed refresh must leave the previous
// mirror snapshot intact and queryable, with the failure recorded in
// the sync log.
func TestSyncEngine_FailedRefreshKeepsPreviousMirror(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "wiptrack_test")

	config.ConnectDatabaseWithRetry()
	models.MigrateTable()

	// Second schema on the same server plays the remote ERP.
	if err := config.GetDB().Exec("CREATE DATABASE IF NOT EXISTS wip_remote_test").Error; err != nil {
		t.Fatalf("create remote schema: %v", err)
	}
	t.Setenv("REMOTE_DB_USER", "root")
	t.Setenv("REMOTE_DB_PASSWORD", "testpw")
	t.Setenv("REMOTE_DB_HOST", "127.0.0.1")
	t.Setenv("REMOTE_DB_PORT", mysqlPort)
	t.Setenv("REMOTE_DB_NAME", "wip_remote_test")
	config.ConnectRemoteSource()

	remote := config.GetRemoteDB()
	if remote == nil {
		t.Fatalf("remote source did not connect")
	}
	seedRemoteSchema(t, remote)

	engine := wipsync.NewEngine(config.GetDB(), remote, config.GetLogger(), nil)

	run, err := engine.Run(ctx, models.SyncTriggeredManual)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if run.Status != models.SyncRunStatusSuccess {
		t.Fatalf("first run status = %q, want success", run.Status)
	}
	if run.OrdersSynced != 1 {
		t.Fatalf("orders synced = %d, want 1 (closed order excluded)", run.OrdersSynced)
	}
	if run.ItemsSynced != 2 || run.UnitsSynced != 3 {
		t.Fatalf("items/units synced = %d/%d, want 2/3", run.ItemsSynced, run.UnitsSynced)
	}

	var packedUnits int64
	if err := config.GetDB().Model(&models.MirrorUnit{}).
		Where("wip_stage = ?", string(models.StagePacked)).
		Count(&packedUnits).Error; err != nil {
		t.Fatalf("count packed units: %v", err)
	}
	if packedUnits != 1 {
		t.Fatalf("packed units = %d, want 1", packedUnits)
	}

	// Break the remote mid-schema so the refresh fails after its
	// delete phase has already run inside the transaction.
	if err := remote.Exec("RENAME TABLE stock_master TO stock_master_gone").Error; err != nil {
		t.Fatalf("rename stock_master: %v", err)
	}

	failedRun, err := engine.Run(ctx, models.SyncTriggeredManual)
	if err == nil {
		t.Fatalf("expected the second run to fail")
	}
	if failedRun == nil || failedRun.Status != models.SyncRunStatusError {
		t.Fatalf("failed run not recorded with error status: %+v", failedRun)
	}
	if failedRun.Errors == "" {
		t.Fatalf("failed run carries no error text")
	}

	// Previous snapshot must still be fully queryable.
	assertMirrorCounts(t, 1, 2, 3)

	// Restore the remote, close the first order and add a new one; the
	// next refresh must swap the snapshot wholesale.
	if err := remote.Exec("RENAME TABLE stock_master_gone TO stock_master").Error; err != nil {
		t.Fatalf("restore stock_master: %v", err)
	}
	if err := remote.Exec("UPDATE order_master SET disp_date = NOW(), ord_status = 'CLS' WHERE order_id = 501").Error; err != nil {
		t.Fatalf("close order 501: %v", err)
	}
	if err := remote.Exec(`INSERT INTO order_master (order_id, order_no, buyer_code, buyer_name, ord_status, tot_pcs) VALUES (503, 'B-26-001', 'ACME', 'Acme Rugs', 'OPN', 1)`).Error; err != nil {
		t.Fatalf("insert order 503: %v", err)
	}
	if err := remote.Exec(`INSERT INTO order_detail (order_id, item_id, design_no, size, color, quality, qty) VALUES (503, 1, 'D-9', '8X10', 'IVORY', 'Q2', 1)`).Error; err != nil {
		t.Fatalf("insert detail 503: %v", err)
	}

	run3, err := engine.Run(ctx, models.SyncTriggeredScheduler)
	if err != nil {
		t.Fatalf("third run: %v", err)
	}
	if run3.Status != models.SyncRunStatusSuccess {
		t.Fatalf("third run status = %q, want success", run3.Status)
	}
	assertMirrorCounts(t, 1, 1, 0)

	var orderNos []string
	if err := config.GetDB().Model(&models.MirrorOrder{}).Pluck("order_no", &orderNos).Error; err != nil {
		t.Fatalf("pluck order_no: %v", err)
	}
	if len(orderNos) != 1 || orderNos[0] != "B-26-001" {
		t.Fatalf("mirror orders after refresh = %v, want [B-26-001]", orderNos)
	}

	last, err := models.LastSuccessfulSyncRun(ctx)
	if err != nil {
		t.Fatalf("LastSuccessfulSyncRun: %v", err)
	}
	if last == nil || last.ID != run3.ID {
		t.Fatalf("last successful run = %+v, want run %d", last, run3.ID)
	}
}

func seedRemoteSchema(t *testing.T, remote *gorm.DB) {
	t.Helper()
	ddl := []string{
		`CREATE TABLE process_master (
			process_code INT PRIMARY KEY,
			process_name VARCHAR(100) NOT NULL
		)`,
		`CREATE TABLE order_master (
			order_id INT PRIMARY KEY,
			order_no VARCHAR(50) NOT NULL,
			buyer_code VARCHAR(20),
			buyer_name VARCHAR(100),
			order_date DATETIME NULL,
			disp_date DATETIME NULL,
			ord_status VARCHAR(10),
			tot_pcs INT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE order_detail (
			order_id INT NOT NULL,
			item_id INT NOT NULL,
			design_no VARCHAR(50),
			size VARCHAR(30),
			color VARCHAR(30),
			quality VARCHAR(30),
			qty INT NOT NULL DEFAULT 0,
			PRIMARY KEY (order_id, item_id)
		)`,
		`CREATE TABLE stock_master (
			stock_no VARCHAR(30) PRIMARY KEY,
			order_id INT NOT NULL,
			item_id INT NOT NULL,
			process_code INT NOT NULL
		)`,
	}
	seed := []string{
		`INSERT INTO process_master (process_code, process_name) VALUES
			(1, 'Weaving'), (19, 'FGS In'), (21, 'Packing')`,
		`INSERT INTO order_master (order_id, order_no, buyer_code, buyer_name, ord_status, tot_pcs) VALUES
			(501, 'B-25-101', 'ACME', 'Acme Rugs', 'OPN', 3)`,
		`INSERT INTO order_master (order_id, order_no, buyer_code, buyer_name, disp_date, ord_status, tot_pcs) VALUES
			(502, 'B-24-050', 'ACME', 'Acme Rugs', NOW(), 'CLS', 1)`,
		`INSERT INTO order_detail (order_id, item_id, design_no, size, color, quality, qty) VALUES
			(501, 1, 'D-1', '8X10', 'RED', 'Q1', 2),
			(501, 2, 'D-2', '2.6 X 9', 'BLUE', 'Q1', 1),
			(502, 1, 'D-3', '9X12', 'GREEN', 'Q2', 1)`,
		`INSERT INTO stock_master (stock_no, order_id, item_id, process_code) VALUES
			('S-1', 501, 1, 1),
			('S-2', 501, 1, 21),
			('S-3', 501, 2, 19),
			('S-9', 502, 1, 21)`,
	}
	for _, stmt := range append(ddl, seed...) {
		if err := remote.Exec(stmt).Error; err != nil {
			t.Fatalf("seed remote schema: %v\n%s", err, stmt)
		}
	}
}

func assertMirrorCounts(t *testing.T, orders, items, units int64) {
	t.Helper()
	var got int64
	if err := config.GetDB().Model(&models.MirrorOrder{}).Count(&got).Error; err != nil {
		t.Fatalf("count mirror orders: %v", err)
	}
	if got != orders {
		t.Fatalf("mirror orders = %d, want %d", got, orders)
	}
	if err := config.GetDB().Model(&models.MirrorOrderItem{}).Count(&got).Error; err != nil {
		t.Fatalf("count mirror items: %v", err)
	}
	if got != items {
		t.Fatalf("mirror items = %d, want %d", got, items)
	}
	if err := config.GetDB().Model(&models.MirrorUnit{}).Count(&got).Error; err != nil {
		t.Fatalf("count mirror units: %v", err)
	}
	if got != units {
		t.Fatalf("mirror units = %d, want %d", got, units)
	}
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("wiptrack-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=wiptrack_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
