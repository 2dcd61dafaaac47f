package crate

import (
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Item struct {
	ID int
}

type ItemFactory interface {
	Create(id int) (Item, error)
	CreateMany(n int) ([]Item, error)
}

// batchFactory builds many items by invoking Create on its source reflectively.
type batchFactory struct {
	source ItemFactory
}

func (f *batchFactory) Create(id int) (Item, error) {
	return f.source.Create(id)
}

func (f *batchFactory) CreateMany(n int) ([]Item, error) {
	items := make([]Item, 0, n)
	for i := 0; i < n; i++ {
		results, err := Invoke(f.source, "Create", i)
		if err != nil {
			return nil, err
		}
		items = append(items, results[0].(Item))
	}
	return items, nil
}

type itemFactoryProxy struct {
	*Proxy[ItemFactory]
}

func (p itemFactoryProxy) Create(id int) (item Item, err error) {
	err = p.Call("Create", func(f ItemFactory) (err error) {
		item, err = f.Create(id)
		return err
	})
	return item, err
}

func (p itemFactoryProxy) CreateMany(n int) (items []Item, err error) {
	err = p.Call("CreateMany", func(f ItemFactory) (err error) {
		items, err = f.CreateMany(n)
		return err
	})
	return items, err
}

type joiner struct{}

func (joiner) Join(sep string, parts ...string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return out
}

func (joiner) Explode() {
	panic("exploded")
}

func TestInvoke_Results(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := NewMockItemFactory(ctrl)
	source.EXPECT().Create(3).Return(Item{ID: 3}, nil)

	results, err := Invoke(source, "Create", 3)
	require.NoError(t, err)
	assert.Equal(t, []any{Item{ID: 3}}, results)
}

func TestInvoke_WrapsReturnedError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	boom := errors.New("boom")
	source := NewMockItemFactory(ctrl)
	source.EXPECT().Create(1).Return(Item{}, boom)

	_, err := Invoke(source, "Create", 1)
	require.Error(t, err)

	var inv *InvocationError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, "Create", inv.Method)
	assert.Equal(t, boom, inv.Err)
	assert.Equal(t, boom, errors.Cause(err))
	assert.Equal(t, "invocation of Create failed: boom", err.Error())
}

func TestInvoke_WrapsPanic(t *testing.T) {
	_, err := Invoke(joiner{}, "Explode")

	var inv *InvocationError
	require.True(t, errors.As(err, &inv))
	assert.EqualError(t, inv.Err, "panic: exploded")
}

func TestInvoke_Variadic(t *testing.T) {
	results, err := Invoke(joiner{}, "Join", "-", "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, []any{"a-b-c"}, results)

	results, err = Invoke(joiner{}, "Join", ",")
	require.NoError(t, err)
	assert.Equal(t, []any{""}, results)
}

func TestInvoke_BadCalls(t *testing.T) {
	_, err := Invoke(nil, "Create")
	assert.Error(t, err)

	_, err = Invoke(joiner{}, "Missing")
	assert.EqualError(t, err, "crate: crate.joiner has no method Missing")

	_, err = Invoke(joiner{}, "Join")
	assert.Error(t, err)

	_, err = Invoke(joiner{}, "Join", 42)
	assert.ErrorIs(t, err, ErrTypeMismatchSentinel)
}

func TestUnwrapInvocation(t *testing.T) {
	base := errors.New("base")
	once := &InvocationError{Method: "Create", Err: base}
	twice := &InvocationError{Method: "CreateMany", Err: once}

	tests := []struct {
		name  string
		err   error
		twice bool
		want  error
	}{
		{"plain error unchanged", base, true, base},
		{"single level", once, false, base},
		{"single level marked", once, true, base},
		{"nested unmarked", twice, false, once},
		{"nested marked", twice, true, base},
		{"nested without cause", &InvocationError{Method: "x", Err: &InvocationError{Method: "y"}}, true, &InvocationError{Method: "y"}},
		{"no cause", &InvocationError{Method: "x"}, false, &InvocationError{Method: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UnwrapInvocation(tt.err, tt.twice))
		})
	}
}

func TestProxy_InvokeUnwrapsOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	boom := errors.New("boom")
	source := NewMockItemFactory(ctrl)
	source.EXPECT().Create(0).Return(Item{}, boom)

	proxy := NewProxy[ItemFactory](&batchFactory{source: source})

	_, err := proxy.Invoke("CreateMany", 2)

	var inv *InvocationError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, "Create", inv.Method)
	assert.Equal(t, boom, inv.Err)
}

func TestProxy_InvokeUnwrapsTwice(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	boom := errors.New("boom")
	source := NewMockItemFactory(ctrl)
	source.EXPECT().Create(0).Return(Item{}, boom)

	proxy := NewProxy[ItemFactory](&batchFactory{source: source}, UnwrapTwice("CreateMany"))

	_, err := proxy.Invoke("CreateMany", 2)
	assert.Equal(t, boom, err)
}

func TestProxy_InvokeSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := NewMockItemFactory(ctrl)
	source.EXPECT().Create(0).Return(Item{ID: 10}, nil)
	source.EXPECT().Create(1).Return(Item{ID: 11}, nil)

	proxy := NewProxy[ItemFactory](&batchFactory{source: source})

	results, err := proxy.Invoke("CreateMany", 2)
	require.NoError(t, err)
	assert.Equal(t, []any{[]Item{{ID: 10}, {ID: 11}}}, results)
}

func TestProxy_CallUnwrapsReturnedError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	boom := errors.New("boom")
	source := NewMockItemFactory(ctrl)
	source.EXPECT().Create(0).Return(Item{}, boom)

	factory := itemFactoryProxy{NewProxy[ItemFactory](&batchFactory{source: source})}

	_, err := factory.CreateMany(1)
	assert.Equal(t, boom, err)
}

func TestProxy_CallRepanicsUnwrapped(t *testing.T) {
	boom := errors.New("boom")
	proxy := NewProxy[ItemFactory](nil)

	assert.PanicsWithError(t, "boom", func() {
		_ = proxy.Call("Create", func(ItemFactory) error {
			panic(&InvocationError{Method: "Create", Err: boom})
		})
	})

	assert.PanicsWithValue(t, "not an error", func() {
		_ = proxy.Call("Create", func(ItemFactory) error {
			panic("not an error")
		})
	})
}

func TestProxied_Registration(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	boom := errors.New("boom")
	source := NewMockItemFactory(ctrl)
	source.EXPECT().Create(0).Return(Item{}, boom)

	c := New()
	c.Declare(func() *batchFactory { return &batchFactory{source: source} })
	c.Register(TypeOf[ItemFactory](), TypeOf[*batchFactory](), Proxied(func(f ItemFactory) ItemFactory {
		return itemFactoryProxy{NewProxy(f, UnwrapTwice("CreateMany"))}
	}))

	factory := Must[ItemFactory](c)
	require.IsType(t, itemFactoryProxy{}, factory)
	assert.True(t, c.Inspect(TypeOf[ItemFactory]()).Proxied)

	_, err := factory.CreateMany(1)
	assert.Equal(t, boom, err)
}

func TestProxied_FactoryNotWrapped(t *testing.T) {
	c := New()
	RegisterFactory(c, func(*Container) (ItemFactory, error) {
		return &batchFactory{}, nil
	})

	factory := Must[ItemFactory](c)
	assert.IsType(t, &batchFactory{}, factory)
	assert.False(t, c.Inspect(TypeOf[ItemFactory]()).Proxied)
}

func TestProxied_RequiresInterface(t *testing.T) {
	assert.Panics(t, func() {
		Proxied(func(b *Bar) *Bar { return b })
	})
	assert.Panics(t, func() {
		Proxied[ItemFactory](nil)
	})
}

func TestProxied_TypeMismatch(t *testing.T) {
	c := New()
	c.Register(TypeOf[Namer](), TypeOf[*staticNamer](), Proxied(func(f ItemFactory) ItemFactory { return f }))

	_, err := Resolve[Namer](c)
	assert.ErrorIs(t, err, ErrTypeMismatchSentinel)
}
