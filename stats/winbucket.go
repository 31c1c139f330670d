package stats

import "sort"

// WinBuckets
//
// 用來快速定位贏倍 -> DistReport 位置 O(log n)
//
// 請勿修改預設值
//   - win區間: 贏倍區間 [0,0], (0,1), [1,2), [2,5), ..., [2000,10000), [10000, +inf)
type WinBuckets struct {
	edges        []float64
	winBucketStr []string
}

// Buckets 預設贏倍分桶
var Buckets *WinBuckets = &WinBuckets{
	edges:        []float64{0, 1, 2, 5, 10, 20, 50, 100, 300, 500, 1000, 2000, 10000},
	winBucketStr: []string{"[0,0]", "(0,1)", "[1,2)", "[2,5)", "[5,10)", "[10,20)", "[20,50)", "[50,100)", "[100,300)", "[300,500)", "[500,1000)", "[1000,2000)", "[2000,10000)", "[10000,+inf)"},
}

func (b *WinBuckets) WinBucketStr() []string {
	return b.winBucketStr
}

// Index 回傳贏倍所屬的分桶
//
// 非正值（含 NaN）一律落在 [0,0]
func (b *WinBuckets) Index(mult float64) int {
	if !(mult > 0) {
		return 0
	}
	// 小於等於 mult 的邊界數量即為桶索引
	return sort.Search(len(b.edges), func(i int) bool { return b.edges[i] > mult })
}
