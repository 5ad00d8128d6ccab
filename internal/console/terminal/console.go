// Package terminal es la interfaz de texto de la caja: facturación, productos,
// dashboard y reportes sobre el catálogo y el carrito de la consola.
package terminal

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/jhoicas/tienda-pos/internal/application/dto"
	"github.com/jhoicas/tienda-pos/internal/console/cart"
	"github.com/jhoicas/tienda-pos/internal/console/catalog"
	"github.com/jhoicas/tienda-pos/pkg/logger"
)

// Backend operaciones del backend que usan las vistas fuera del carrito.
type Backend interface {
	CreateProduct(ctx context.Context, in dto.ProductRequest) (*dto.ProductResponse, error)
	UpdateProduct(ctx context.Context, id int64, in dto.ProductRequest) (*dto.ProductResponse, error)
	DeleteProduct(ctx context.Context, id int64) error
	DownloadReceipt(ctx context.Context, id int64) ([]byte, error)
	DashboardStats(ctx context.Context) (*dto.DashboardStats, error)
	TodayTransactions(ctx context.Context) ([]dto.SaleResponse, error)
	ReportSummary(ctx context.Context) (*dto.ReportSummary, error)
	StockReport(ctx context.Context) ([]dto.StockItem, error)
}

// Options presentación y comportamiento de la consola.
type Options struct {
	CurrencyPrefix   string
	LowStock         int
	DashboardRefresh time.Duration
	ReceiptDir       string
	Location         *time.Location
}

// Console controlador de la caja. Es dueño del catálogo y del carrito durante la sesión.
type Console struct {
	backend Backend
	catalog *catalog.Cache
	cart    *cart.Engine
	opts    Options
	log     *logger.Logger

	outMu sync.Mutex
	out   io.Writer

	input  <-chan string
	filter string
}

// New arma la consola.
func New(backend Backend, cat *catalog.Cache, engine *cart.Engine, opts Options, log *logger.Logger) *Console {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.DashboardRefresh <= 0 {
		opts.DashboardRefresh = 30 * time.Second
	}
	if opts.ReceiptDir == "" {
		opts.ReceiptDir = "."
	}
	return &Console{
		backend: backend,
		catalog: cat,
		cart:    engine,
		opts:    opts,
		log:     log,
	}
}

var errQuit = errors.New("salir")

type command struct {
	usage string
	help  string
	run   func(c *Console, ctx context.Context, args []string) error
}

type namedCommand struct {
	name string
	command
}

// commands en el orden en que los muestra la ayuda. Se llena en init porque
// "ayuda" recorre la misma lista.
var commands []namedCommand

func init() {
	commands = []namedCommand{
		{"catalogo", command{"catalogo", "lista el catálogo (con el filtro vigente)", (*Console).cmdCatalog}},
		{"buscar", command{"buscar [texto]", "filtra por nombre o categoría; sin texto quita el filtro", (*Console).cmdSearch}},
		{"recargar", command{"recargar", "vuelve a pedir el catálogo al backend", (*Console).cmdReload}},
		{"agregar", command{"agregar <id>", "agrega una unidad al carrito", (*Console).cmdAdd}},
		{"mas", command{"mas <id>", "suma una unidad a la línea", (*Console).cmdIncrement}},
		{"menos", command{"menos <id>", "resta una unidad a la línea", (*Console).cmdDecrement}},
		{"cantidad", command{"cantidad <id> <delta>", "suma delta a la línea (negativo resta)", (*Console).cmdDelta}},
		{"quitar", command{"quitar <id>", "quita la línea del carrito", (*Console).cmdRemove}},
		{"vaciar", command{"vaciar", "vacía el carrito", (*Console).cmdClear}},
		{"carrito", command{"carrito", "muestra el carrito", (*Console).cmdCart}},
		{"cobrar", command{"cobrar", "registra la venta", (*Console).cmdCheckout}},
		{"comprobante", command{"comprobante <venta>", "descarga el comprobante PDF de una venta", (*Console).cmdReceipt}},
		{"productos", command{"productos", "lista productos con margen y stock", (*Console).cmdProducts}},
		{"nuevo", command{"nuevo", "crea un producto", (*Console).cmdCreateProduct}},
		{"editar", command{"editar <id>", "modifica un producto", (*Console).cmdUpdateProduct}},
		{"eliminar", command{"eliminar <id>", "elimina un producto", (*Console).cmdDeleteProduct}},
		{"dashboard", command{"dashboard", "ventas del día", (*Console).cmdDashboard}},
		{"vigilar", command{"vigilar", "dashboard con recarga periódica (Enter para salir)", (*Console).cmdWatch}},
		{"reportes", command{"reportes [texto]", "valorización del stock", (*Console).cmdReports}},
		{"ayuda", command{"ayuda", "muestra esta ayuda", (*Console).cmdHelp}},
		{"salir", command{"salir", "cierra la consola", func(*Console, context.Context, []string) error { return errQuit }}},
	}
}

func lookup(name string) (command, bool) {
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd.command, true
		}
	}
	return command{}, false
}

// Run atiende comandos leídos de in hasta "salir", fin de la entrada o cancelación de ctx.
func (c *Console) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	c.out = out
	lines := make(chan string)
	c.input = lines
	go readLines(ctx, in, lines)

	unsubCart := c.cart.Subscribe(c.onCartEvent)
	defer unsubCart()
	unsubCatalog := c.catalog.Subscribe(c.onCatalogEvent)
	defer unsubCatalog()

	c.printf("Caja lista. Escriba \"ayuda\" para ver los comandos.\n")
	if err := c.catalog.Refresh(ctx); err == nil {
		c.renderCatalog()
	}

	for {
		c.printf("> ")
		line, ok := c.next(ctx)
		if !ok {
			c.printf("\n")
			return ctx.Err()
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd, found := lookup(strings.ToLower(fields[0]))
		if !found {
			c.printf("Comando desconocido: %s. Escriba \"ayuda\".\n", fields[0])
			continue
		}
		err := cmd.run(c, ctx, fields[1:])
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			c.log.Warn().Err(err).Str("command", fields[0]).Msg("comando fallido")
			c.printf("Error: %s\n", err)
		}
	}
}

func readLines(ctx context.Context, in io.Reader, lines chan<- string) {
	defer close(lines)
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		select {
		case lines <- sc.Text():
		case <-ctx.Done():
			return
		}
	}
}

// next espera la próxima línea de entrada.
func (c *Console) next(ctx context.Context) (string, bool) {
	select {
	case line, ok := <-c.input:
		return strings.TrimSpace(line), ok
	case <-ctx.Done():
		return "", false
	}
}

// ask muestra label y lee una respuesta; vacía devuelve def.
func (c *Console) ask(ctx context.Context, label, def string) (string, bool) {
	if def != "" {
		c.printf("%s [%s]: ", label, def)
	} else {
		c.printf("%s: ", label)
	}
	answer, ok := c.next(ctx)
	if !ok {
		return "", false
	}
	if answer == "" {
		return def, true
	}
	return answer, true
}

func (c *Console) printf(format string, args ...any) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// table escribe filas separadas por tabuladores alineadas en columnas.
func (c *Console) table(header string, rows []string) {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	for _, r := range rows {
		fmt.Fprintln(tw, r)
	}
	_ = tw.Flush()

	c.outMu.Lock()
	defer c.outMu.Unlock()
	_, _ = c.out.Write(buf.Bytes())
}

func (c *Console) cmdHelp(context.Context, []string) error {
	rows := make([]string, 0, len(commands))
	for _, cmd := range commands {
		rows = append(rows, cmd.usage+"\t"+cmd.help)
	}
	c.table("COMANDO\tDESCRIPCIÓN", rows)
	return nil
}

func parseID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, errors.New("falta el id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id inválido: %s", args[0])
	}
	return id, nil
}

func itoa(n int) string { return strconv.Itoa(n) }
