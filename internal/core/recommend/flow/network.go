// Package flow 提供推薦引擎使用的有向容量圖與 Edmonds–Karp 最大流求解器。
//
// 每條邊由起點頂點擁有，並持有反向邊的參照（不擁有）以支援殘餘圖上的流量抵銷。
// 邊的附加資訊以封閉的標記聯合（Annotation）表示，每種邊只攜帶自己需要的欄位。
package flow

import "fmt"

// VertexKind 頂點種類
type VertexKind uint8

const (
	KindSource VertexKind = iota
	KindSink
	KindIngredient
	KindRecipe
	KindNutrition
	KindBalanced
)

func (k VertexKind) String() string {
	switch k {
	case KindSource:
		return "source"
	case KindSink:
		return "sink"
	case KindIngredient:
		return "ingredient"
	case KindRecipe:
		return "recipe"
	case KindNutrition:
		return "nutrition"
	case KindBalanced:
		return "balanced"
	default:
		return "unknown"
	}
}

// VertexID 強型別頂點識別
type VertexID struct {
	Kind  VertexKind
	Index int
}

func (v VertexID) String() string {
	switch v.Kind {
	case KindSource, KindSink, KindBalanced:
		return v.Kind.String()
	default:
		return fmt.Sprintf("%s#%d", v.Kind, v.Index)
	}
}

var (
	// Source 超級源點
	Source = VertexID{Kind: KindSource}
	// Sink 超級匯點
	Sink = VertexID{Kind: KindSink}
	// Balanced 均衡餐點頂點
	Balanced = VertexID{Kind: KindBalanced}
)

// Ingredient 食材頂點
func Ingredient(i int) VertexID { return VertexID{Kind: KindIngredient, Index: i} }

// Recipe 食譜頂點
func Recipe(i int) VertexID { return VertexID{Kind: KindRecipe, Index: i} }

// Nutrition 營養類別頂點
func Nutrition(i int) VertexID { return VertexID{Kind: KindNutrition, Index: i} }

// EdgeKey 以有序頂點對識別一條邊
type EdgeKey struct {
	From VertexID
	To   VertexID
}

// Edge 有向邊
type Edge struct {
	From       VertexID
	To         VertexID
	Capacity   float64
	Flow       float64
	Annotation Annotation

	reverse *Edge
}

// Residual 剩餘容量
func (e *Edge) Residual() float64 {
	return e.Capacity - e.Flow
}

// Reverse 反向邊
func (e *Edge) Reverse() *Edge {
	return e.reverse
}

// Network 以鄰接表表示的容量圖
type Network struct {
	vertices []VertexID
	adj      map[VertexID][]*Edge
	edges    map[EdgeKey]*Edge
}

// NewNetwork 建立只含源點與匯點的網路
func NewNetwork() *Network {
	n := &Network{
		adj:   make(map[VertexID][]*Edge),
		edges: make(map[EdgeKey]*Edge),
	}
	n.AddVertex(Source)
	n.AddVertex(Sink)
	return n
}

// AddVertex 新增頂點，已存在則忽略
func (n *Network) AddVertex(v VertexID) {
	if _, ok := n.adj[v]; ok {
		return
	}
	n.adj[v] = nil
	n.vertices = append(n.vertices, v)
}

// HasVertex 頂點是否存在
func (n *Network) HasVertex(v VertexID) bool {
	_, ok := n.adj[v]
	return ok
}

// Vertices 依加入順序回傳頂點
func (n *Network) Vertices() []VertexID {
	out := make([]VertexID, len(n.vertices))
	copy(out, n.vertices)
	return out
}

// AddEdge 新增或更新 from→to 的邊，並確保反向邊存在。
// 若該邊先前只是合成的反向邊，會被升級為實際的邊。
func (n *Network) AddEdge(from, to VertexID, capacity float64, ann Annotation) *Edge {
	n.AddVertex(from)
	n.AddVertex(to)

	e := n.edge(from, to)
	e.Capacity = capacity
	e.Annotation = ann

	r := n.edge(to, from)
	if r.Annotation == nil {
		r.Annotation = ResidualEdge{}
	}
	e.reverse = r
	r.reverse = e
	return e
}

// edge 取得或建立 from→to 的邊（容量 0）
func (n *Network) edge(from, to VertexID) *Edge {
	key := EdgeKey{From: from, To: to}
	if e, ok := n.edges[key]; ok {
		return e
	}
	e := &Edge{From: from, To: to}
	n.edges[key] = e
	n.adj[from] = append(n.adj[from], e)
	return e
}

// Edge 查詢 from→to 的邊
func (n *Network) Edge(from, to VertexID) (*Edge, bool) {
	e, ok := n.edges[EdgeKey{From: from, To: to}]
	return e, ok
}

// OutEdges 回傳頂點擁有的所有邊（含反向邊）
func (n *Network) OutEdges(v VertexID) []*Edge {
	return n.adj[v]
}

// InEdges 回傳指向頂點的非殘餘邊
func (n *Network) InEdges(v VertexID) []*Edge {
	var out []*Edge
	for _, e := range n.adj[v] {
		if r := e.reverse; r != nil && r.To == v && !IsResidual(r.Annotation) {
			out = append(out, r)
		}
	}
	return out
}

// EdgeCount 非殘餘邊數量
func (n *Network) EdgeCount() int {
	count := 0
	for _, e := range n.edges {
		if !IsResidual(e.Annotation) {
			count++
		}
	}
	return count
}

// SourceCapacity 源點所有外流邊容量總和
func (n *Network) SourceCapacity() float64 {
	total := 0.0
	for _, e := range n.adj[Source] {
		if !IsResidual(e.Annotation) {
			total += e.Capacity
		}
	}
	return total
}
