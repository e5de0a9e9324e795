package datastructure

import (
	"golang.org/x/exp/constraints"
)

// Matrix is a dense row-major m x n matrix.
type Matrix[T constraints.Integer | constraints.Float] struct {
	m, n int
	vals []T
}

func NewMatrix[T constraints.Integer | constraints.Float](m, n int, fill T) *Matrix[T] {
	vals := make([]T, m*n)
	for i := range vals {
		vals[i] = fill
	}
	return &Matrix[T]{
		m:    m,
		n:    n,
		vals: vals,
	}
}

func (mt *Matrix[T]) Rows() int {
	return mt.m
}

func (mt *Matrix[T]) Cols() int {
	return mt.n
}

func (mt *Matrix[T]) Get(row, col int) T {
	return mt.vals[row*mt.n+col]
}

func (mt *Matrix[T]) Set(val T, row, col int) {
	mt.vals[row*mt.n+col] = val
}

// Row returns row i without copying.
func (mt *Matrix[T]) Row(i int) []T {
	return mt.vals[i*mt.n : (i+1)*mt.n]
}
