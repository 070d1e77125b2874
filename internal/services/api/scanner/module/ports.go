package module

import (
	"context"

	"caisse/internal/core/scan"
	posdom "caisse/internal/services/api/pos/domain"
	scannerdom "caisse/internal/services/api/scanner/domain"
)

// Ports holds the ports the scanner module consumes
type Ports struct {
	Consumer scannerdom.ConsumerPort
}

// Ports returns nil; the scanner exposes no ports to other modules
func (m *Module) Ports() any { return nil }

// CartConsumer feeds confirmed values into the cart through the pos scan port
func CartConsumer(p posdom.ScanPort) scannerdom.ConsumerPort {
	return adaptCartPort{pos: p}
}

// adaptCartPort adapts the pos scan port to the scanner consumer port
type adaptCartPort struct{ pos posdom.ScanPort }

// Consume implements the domain ConsumerPort interface
func (a adaptCartPort) Consume(ctx context.Context, ev scan.ConfirmedEvent) (scannerdom.ConsumerResult, error) {
	res, err := a.pos.HandleScan(ctx, ev.Value)
	if err != nil {
		return scannerdom.ConsumerResult{}, err
	}
	out := scannerdom.ConsumerResult{Matched: res.Matched}
	if res.Product != nil {
		out.ProductID = res.Product.ID
	}
	return out, nil
}
