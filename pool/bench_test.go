package pool

import "testing"

func BenchmarkAllocateFree(b *testing.B) {
	p := NewPacketPool(WithWorkers(1))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		pkt, err := p.Allocate(true)
		if err != nil {
			b.Fatal(err)
		}
		p.Free(pkt)
	}
}

func BenchmarkAllocateFreeParallel(b *testing.B) {
	p := NewPacketPool()
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			pkt, err := p.Allocate(true)
			if err != nil {
				b.Error(err)
				return
			}
			p.Free(pkt)
		}
	})
}
