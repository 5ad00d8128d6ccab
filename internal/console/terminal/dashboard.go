package terminal

import (
	"context"
	"fmt"
	"time"
)

func (c *Console) cmdDashboard(ctx context.Context, _ []string) error {
	return c.renderDashboard(ctx)
}

func (c *Console) renderDashboard(ctx context.Context) error {
	stats, err := c.backend.DashboardStats(ctx)
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	sales, err := c.backend.TodayTransactions(ctx)
	if err != nil {
		return fmt.Errorf("transacciones del día: %w", err)
	}

	c.printf("Ventas de hoy\n  Transacciones: %d\n  Ingresos: %s\n  Ganancia: %s\n",
		stats.DailyTransactions, c.money(stats.DailyRevenue), c.money(stats.DailyProfit))
	if len(sales) == 0 {
		c.printf("No hay transacciones hoy.\n")
		return nil
	}
	rows := make([]string, 0, len(sales))
	for _, s := range sales {
		rows = append(rows, fmt.Sprintf("%d\t%s\t%d artículos\t%s\t%s",
			s.ID, c.clock(s.CreatedAt), s.ItemCount(), c.money(s.TotalAmount), c.money(s.Profit)))
	}
	c.table("VENTA\tHORA\tARTÍCULOS\tTOTAL\tGANANCIA", rows)
	return nil
}

// cmdWatch vuelve a dibujar el dashboard en cada tick hasta que llega una línea
// de entrada o se cancela ctx. Un fallo de red se informa y se reintenta en el próximo tick.
func (c *Console) cmdWatch(ctx context.Context, _ []string) error {
	c.printf("Modo vigilancia cada %s. Enter para salir.\n", c.opts.DashboardRefresh)
	c.watchTick(ctx)

	ticker := time.NewTicker(c.opts.DashboardRefresh)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.watchTick(ctx)
		case <-c.input:
			c.printf("Fin del modo vigilancia.\n")
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Console) watchTick(ctx context.Context) {
	if err := c.renderDashboard(ctx); err != nil {
		c.log.Warn().Err(err).Msg("dashboard no disponible")
		c.printf("Error: %s\n", err)
	}
}
