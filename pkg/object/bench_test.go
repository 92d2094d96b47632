package object

import (
	"fmt"
	"path/filepath"
	"testing"
)

func BenchmarkDiskStorePushUnique(b *testing.B) {
	store := NewDiskStore(filepath.Join(b.TempDir(), "objects"), rawCodec{})
	seed := []byte("0123456789abcdef0123456789abcdef")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		payload := []byte(fmt.Sprintf("blob-%d-%x", i, seed))
		if _, err := store.Push(payload); err != nil {
			b.Fatalf("Push: %v", err)
		}
	}
}

func BenchmarkDiskStorePushDuplicate(b *testing.B) {
	store := NewDiskStore(filepath.Join(b.TempDir(), "objects"), rawCodec{})
	payload := []byte("package main\n\nfunc main() { println(\"hello\") }\n")

	b.SetBytes(int64(len(payload)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := store.Push(payload); err != nil {
			b.Fatalf("Push: %v", err)
		}
	}
}

func BenchmarkDiskStoreGet(b *testing.B) {
	for _, codec := range []Codec{rawCodec{}, zstdCodec{}} {
		b.Run(codec.Name(), func(b *testing.B) {
			store := NewDiskStore(filepath.Join(b.TempDir(), "objects"), codec)
			payload := make([]byte, 64*1024)
			for i := range payload {
				payload[i] = byte(i % 251)
			}
			h, err := store.Push(payload)
			if err != nil {
				b.Fatalf("Push: %v", err)
			}

			b.SetBytes(int64(len(payload)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, _, err := store.Get(h); err != nil {
					b.Fatalf("Get: %v", err)
				}
			}
		})
	}
}

func benchTree(width, depth int) *Directory {
	d := NewDirectory()
	for i := 0; i < width; i++ {
		d.Put(fmt.Sprintf("file-%03d.txt", i), FileEntry(HashBytes([]byte(fmt.Sprintf("%d/%d", depth, i)))))
	}
	if depth > 0 {
		for i := 0; i < 4; i++ {
			d.Put(fmt.Sprintf("dir-%d", i), DirEntry(benchTree(width, depth-1)))
		}
	}
	return d
}

func BenchmarkWriteTree(b *testing.B) {
	tree := benchTree(32, 3)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := WriteTree(NewMemoryStore(), tree); err != nil {
			b.Fatalf("WriteTree: %v", err)
		}
	}
}

func BenchmarkReadTree(b *testing.B) {
	store := NewMemoryStore()
	h, err := WriteTree(store, benchTree(32, 3))
	if err != nil {
		b.Fatalf("WriteTree: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ReadTree(store, h); err != nil {
			b.Fatalf("ReadTree: %v", err)
		}
	}
}
