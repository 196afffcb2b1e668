// Package storetest — in-memory реализация store.Store для тестов
// координатора, аналитики и бэкапа. Транзакция работает на копии
// данных и публикуется только при успехе, как и настоящая.
package storetest

import (
	"context"
	"sort"
	"sync"

	"github.com/Spok95/stockbook/internal/domain/movements"
	"github.com/Spok95/stockbook/internal/domain/photos"
	"github.com/Spok95/stockbook/internal/domain/products"
	"github.com/Spok95/stockbook/internal/store"
)

type data struct {
	products  map[string]products.Product
	movements map[string]movements.Movement
	photos    map[string]photos.Photo
	order     map[string]int // порядок вставки для стабильных выборок
	seq       int
}

func (d *data) clone() *data {
	c := newData()
	c.seq = d.seq
	for k, v := range d.products {
		c.products[k] = v
	}
	for k, v := range d.movements {
		c.movements[k] = v
	}
	for k, v := range d.photos {
		c.photos[k] = v
	}
	for k, v := range d.order {
		c.order[k] = v
	}
	return c
}

func newData() *data {
	return &data{
		products:  map[string]products.Product{},
		movements: map[string]movements.Movement{},
		photos:    map[string]photos.Photo{},
		order:     map[string]int{},
	}
}

type Mem struct {
	mu sync.Mutex
	d  *data
}

func NewMem() *Mem { return &Mem{d: newData()} }

func (m *Mem) InTx(_ context.Context, fn func(tx store.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	staged := m.d.clone()
	if err := fn(&memTx{d: staged}); err != nil {
		return err // staging отбрасывается — отката как такового нет
	}
	m.d = staged
	return nil
}

func (m *Mem) ListProducts(context.Context) ([]products.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]products.Product, 0, len(m.d.products))
	for _, p := range m.d.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return m.d.order[out[i].ID] < m.d.order[out[j].ID] })
	return out, nil
}

func (m *Mem) ListMovements(context.Context) ([]movements.Movement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]movements.Movement, 0, len(m.d.movements))
	for _, mv := range m.d.movements {
		out = append(out, mv)
	}
	sort.Slice(out, func(i, j int) bool { return m.d.order[out[i].ID] < m.d.order[out[j].ID] })
	return out, nil
}

func (m *Mem) ListPhotos(context.Context) ([]photos.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]photos.Photo, 0, len(m.d.photos))
	for _, ph := range m.d.photos {
		out = append(out, ph)
	}
	sort.Slice(out, func(i, j int) bool { return m.d.order[out[i].ID] < m.d.order[out[j].ID] })
	return out, nil
}

type memTx struct{ d *data }

func (t *memTx) ProductByID(_ context.Context, id string) (*products.Product, error) {
	p, ok := t.d.products[id]
	if !ok {
		return nil, nil
	}
	cp := p
	return &cp, nil
}

func (t *memTx) SaveProduct(_ context.Context, p *products.Product) error {
	t.d.products[p.ID] = *p
	return nil
}

func (t *memTx) InsertProduct(_ context.Context, p *products.Product) error {
	t.d.products[p.ID] = *p
	t.d.seq++
	t.d.order[p.ID] = t.d.seq
	return nil
}

func (t *memTx) DeleteProduct(_ context.Context, id string) error {
	for phID, ph := range t.d.photos {
		if ph.ProductID == id {
			delete(t.d.photos, phID)
			delete(t.d.order, phID)
		}
	}
	delete(t.d.products, id)
	delete(t.d.order, id)
	return nil
}

func (t *memTx) InsertMovement(_ context.Context, m *movements.Movement) error {
	t.d.movements[m.ID] = *m
	t.d.seq++
	t.d.order[m.ID] = t.d.seq
	return nil
}

func (t *memTx) MovementByID(_ context.Context, id string) (*movements.Movement, error) {
	m, ok := t.d.movements[id]
	if !ok {
		return nil, nil
	}
	cp := m
	return &cp, nil
}

func (t *memTx) UpdateMovement(_ context.Context, m *movements.Movement) error {
	t.d.movements[m.ID] = *m
	return nil
}

func (t *memTx) DeleteMovement(_ context.Context, id string) error {
	delete(t.d.movements, id)
	delete(t.d.order, id)
	return nil
}

func (t *memTx) InsertPhoto(_ context.Context, p *photos.Photo) error {
	t.d.photos[p.ID] = *p
	t.d.seq++
	t.d.order[p.ID] = t.d.seq
	return nil
}

func (t *memTx) Clear(context.Context) error {
	t.d.products = map[string]products.Product{}
	t.d.movements = map[string]movements.Movement{}
	t.d.photos = map[string]photos.Photo{}
	t.d.order = map[string]int{}
	return nil
}
