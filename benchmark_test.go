package crate

import (
	"testing"
)

// Benchmark registration.
func BenchmarkRegister_Type(b *testing.B) {
	for i := 0; i < b.N; i++ {
		c := New()
		Register[IFoo, *Foo](c)
	}
}

func BenchmarkRegister_Instance(b *testing.B) {
	bar := &Bar{}
	for i := 0; i < b.N; i++ {
		c := New()
		RegisterInstance(c, bar)
	}
}

// Benchmark resolution.
func BenchmarkResolve_Instance(b *testing.B) {
	c := New()
	RegisterInstance(c, &Bar{})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Resolve(TypeOf[*Bar]())
	}
}

func BenchmarkResolve_Graph(b *testing.B) {
	c := newFooContainer()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Resolve[IFoo](c)
	}
}

func BenchmarkResolve_OpenGeneric(b *testing.B) {
	c := New()
	c.Declare(NewRepo[User])
	c.Register(OpenOf[Repository[any]](), OpenOf[*Repo[any]]())
	Register[*Bar, *Bar](c)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Resolve[Repository[User]](c)
	}
}

func BenchmarkResolve_WithMiddleware(b *testing.B) {
	c := New(WithMiddleware(&FuncMiddleware{}))
	RegisterInstance(c, &Bar{})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Resolve(TypeOf[*Bar]())
	}
}

func BenchmarkResolve_Parallel(b *testing.B) {
	c := newFooContainer()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = Resolve[IFoo](c)
		}
	})
}

func BenchmarkInvoke(b *testing.B) {
	j := joiner{}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Invoke(j, "Join", ",", "a", "b")
	}
}
