package tensor

import (
	"fmt"
	"testing"

	"github.com/qpg93/DeepLearningWithPyTorch/internal/parallel"
)

func BenchmarkShapeOperations(b *testing.B) {
	shape1 := Shape{100, 100}
	shape2 := Shape{100, 1}

	b.Run("NumElements", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = shape1.NumElements()
		}
	})

	b.Run("ComputeStrides", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = shape1.ComputeStrides()
		}
	})

	b.Run("BroadcastShapes", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _, _ = BroadcastShapes(shape1, shape2)
		}
	})
}

func BenchmarkAdd(b *testing.B) {
	for _, size := range []int{16, 128, 512} {
		x, _ := Ones(Shape{size, size})
		y, _ := Ones(Shape{size, size})
		col, _ := Ones(Shape{size, 1})

		b.Run(fmt.Sprintf("same_%dx%d", size, size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_, _ = Add(x, y)
			}
		})

		b.Run(fmt.Sprintf("broadcast_%dx%d", size, size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_, _ = Add(x, col)
			}
		})
	}
}

func BenchmarkBroadcastParallelism(b *testing.B) {
	x, _ := Ones(Shape{1024, 1024})
	col, _ := Ones(Shape{1024, 1})
	prev := Parallelism()
	defer SetParallelism(prev)

	b.Run("sequential", func(b *testing.B) {
		SetParallelism(parallel.Config{Enabled: false})
		for i := 0; i < b.N; i++ {
			_, _ = Mul(x, col)
		}
	})

	b.Run("parallel", func(b *testing.B) {
		SetParallelism(parallel.DefaultConfig())
		for i := 0; i < b.N; i++ {
			_, _ = Mul(x, col)
		}
	})
}

func BenchmarkSumTo(b *testing.B) {
	grad, _ := Ones(Shape{512, 512})
	for i := 0; i < b.N; i++ {
		_, _ = SumTo(grad, Shape{512, 1})
	}
}

func BenchmarkMatMul(b *testing.B) {
	for _, size := range []int{32, 128} {
		x, _ := Ones(Shape{size, size})
		y, _ := Ones(Shape{size, size})
		b.Run(fmt.Sprintf("%dx%d", size, size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_, _ = MatMul(x, y)
			}
		})
	}
}
