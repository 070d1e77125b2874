package module

import (
	"context"

	posdom "caisse/internal/services/api/pos/domain"
	possvc "caisse/internal/services/api/pos/service"
)

// Ports holds the ports exposed by the pos module
type Ports struct {
	Scan    posdom.ScanPort
	Monitor posdom.MonitorPort
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// adaptScanPort adapts the pos service to the scan consumer port
type adaptScanPort struct{ svc possvc.Service }

// HandleScan implements the domain ScanPort interface
func (a adaptScanPort) HandleScan(ctx context.Context, value string) (posdom.ScanResult, error) {
	return a.svc.HandleScan(ctx, value)
}
