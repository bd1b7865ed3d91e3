package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/greenhaven/internal/db/dbtest"
	"github.com/Skotchmaster/greenhaven/internal/mykafka"
	"github.com/Skotchmaster/greenhaven/internal/repo"
	"github.com/Skotchmaster/greenhaven/internal/transport"
)

func TestCartService(t *testing.T) {
	pub := &fakePublisher{}
	svc := &CartService{Repo: repo.New(dbtest.New(t)), Events: pub}
	ctx := context.Background()

	item, err := svc.AddToCart(ctx, transport.CartItemRequest{Email: "B@x.com", ItemID: "fern", Name: "Fern", Price: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)
	assert.Equal(t, "b@x.com", item.Email)

	item, err = svc.AddToCart(ctx, transport.CartItemRequest{Email: "b@x.com", ItemID: "fern", Name: "Fern", Price: 500, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, item.Quantity)

	_, err = svc.AddToCart(ctx, transport.CartItemRequest{Email: "c@x.com", Name: "Moss", Price: 20})
	require.NoError(t, err)

	items, err := svc.ListCart(ctx, "b@x.com")
	require.NoError(t, err)
	require.Len(t, items, 1)

	updated, err := svc.UpdateQuantity(ctx, item.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Quantity)
	_, err = svc.UpdateQuantity(ctx, item.ID, 0)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.UpdateQuantity(ctx, "missing", 1)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.DeleteItem(ctx, item.ID))
	assert.ErrorIs(t, svc.DeleteItem(ctx, item.ID), ErrNotFound)

	n, err := svc.Clear(ctx, "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	assert.Contains(t, pub.topics, mykafka.TopicCartEvents)
}

func TestCartService_Validation(t *testing.T) {
	svc := &CartService{Repo: repo.New(dbtest.New(t))}

	tests := []struct {
		name string
		req  transport.CartItemRequest
	}{
		{name: "no owner", req: transport.CartItemRequest{Name: "Fern"}},
		{name: "no name", req: transport.CartItemRequest{Email: "b@x.com"}},
		{name: "negative price", req: transport.CartItemRequest{Email: "b@x.com", Name: "Fern", Price: -1}},
		{name: "negative quantity", req: transport.CartItemRequest{Email: "b@x.com", Name: "Fern", Quantity: -2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddToCart(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestWishlistService(t *testing.T) {
	svc := &WishlistService{Repo: repo.New(dbtest.New(t))}
	ctx := context.Background()

	item, err := svc.Add(ctx, transport.WishlistItemRequest{Email: "b@x.com", Name: "Fern", Price: 500})
	require.NoError(t, err)

	_, err = svc.Add(ctx, transport.WishlistItemRequest{Email: "b@x.com"})
	assert.ErrorIs(t, err, ErrValidation)

	items, err := svc.List(ctx, "b@x.com")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, svc.Remove(ctx, item.ID))
	assert.ErrorIs(t, svc.Remove(ctx, item.ID), ErrNotFound)
}
