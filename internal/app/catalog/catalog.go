// Package catalog holds the static product catalog and the text files each
// product's lines are drawn from.
package catalog

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

var ErrSourceMissing = errors.New("line source missing")

// LineSource yields the ordered deliverable lines of a product.
type LineSource interface {
	Lines() ([]string, error)
}

// FileSource reads lines from a text file on every call. Blank lines and
// lines starting with '#' are skipped.
type FileSource struct {
	Path string
}

func (f FileSource) Lines() ([]string, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceMissing, f.Path)
		}
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// StaticSource serves a fixed slice of lines.
type StaticSource []string

func (s StaticSource) Lines() ([]string, error) {
	return s, nil
}

type Product struct {
	Name        string
	Price       decimal.Decimal
	Description string
	Source      LineSource
}

type Catalog struct {
	products []Product
	byName   map[string]int
}

func New(products ...Product) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]int, len(products))}
	for _, p := range products {
		if p.Name == "" {
			return nil, errors.New("catalog: product without name")
		}
		if !p.Price.IsPositive() {
			return nil, fmt.Errorf("catalog: product %q: price must be positive", p.Name)
		}
		if p.Source == nil {
			return nil, fmt.Errorf("catalog: product %q: no line source", p.Name)
		}
		if _, dup := c.byName[p.Name]; dup {
			return nil, fmt.Errorf("catalog: duplicate product %q", p.Name)
		}
		c.byName[p.Name] = len(c.products)
		c.products = append(c.products, p)
	}
	return c, nil
}

func (c *Catalog) Get(name string) (Product, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// Products returns the catalog in its configured order.
func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

type productConfig struct {
	Name        string `mapstructure:"name"`
	Price       string `mapstructure:"price"`
	Description string `mapstructure:"description"`
	File        string `mapstructure:"file"`
}

// Load reads a YAML catalog. Relative file paths are resolved against dataDir.
// An empty path returns the default catalog.
func Load(path, dataDir string) (*Catalog, error) {
	if path == "" {
		return Default(dataDir)
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var cfg struct {
		Products []productConfig `mapstructure:"products"`
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("catalog: decode %s: %w", path, err)
	}

	products := make([]Product, 0, len(cfg.Products))
	for _, pc := range cfg.Products {
		price, err := decimal.NewFromString(pc.Price)
		if err != nil {
			return nil, fmt.Errorf("catalog: product %q: price %q: %w", pc.Name, pc.Price, err)
		}
		products = append(products, Product{
			Name:        pc.Name,
			Price:       price,
			Description: pc.Description,
			Source:      FileSource{Path: resolve(dataDir, pc.File)},
		})
	}
	return New(products...)
}

func Default(dataDir string) (*Catalog, error) {
	def := []productConfig{
		{"Num List", "4", "Liste de numéros de téléphone (format standard).", "num_list.txt"},
		{"Num list personnes âgées (1900-1957)", "10", "Numéros pour personnes âgées nées entre 1900 et 1957.", "num_list_personnes_agees.txt"},
		{"Num list banque", "15", "Numéros liés au secteur bancaire.", "num_list_banque.txt"},
		{"Mail List", "4", "Liste d'adresses e-mail (format standard).", "mail_list.txt"},
		{"Fiches banque clients", "0.5", "Fiches triées par banque avec BIC et IBAN.", "fiches_banque_clients.txt"},
		{"Fiches clients", "0.5", "Fiches clients, 0,50 € par fiche.", "fiches_clients.txt"},
	}
	products := make([]Product, 0, len(def))
	for _, pc := range def {
		products = append(products, Product{
			Name:        pc.Name,
			Price:       decimal.RequireFromString(pc.Price),
			Description: pc.Description,
			Source:      FileSource{Path: resolve(dataDir, pc.File)},
		})
	}
	return New(products...)
}

func resolve(dir, file string) string {
	if filepath.IsAbs(file) || dir == "" {
		return file
	}
	return filepath.Join(dir, file)
}
