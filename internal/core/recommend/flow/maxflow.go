package flow

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// DefaultMaxPaths 增廣路徑數量上限
const DefaultMaxPaths = 100

const epsilon = 1e-9

// Result 最大流結果
type Result struct {
	TotalFlow float64
	Paths     [][]VertexID
	Truncated bool // 達到路徑上限而提前結束
}

// Solver Edmonds–Karp 求解器
type Solver struct {
	MaxPaths int
	Logger   *zap.Logger
}

// NewSolver 建立求解器，maxPaths <= 0 時使用預設值
func NewSolver(maxPaths int, logger *zap.Logger) *Solver {
	if maxPaths <= 0 {
		maxPaths = DefaultMaxPaths
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Solver{MaxPaths: maxPaths, Logger: logger}
}

// MaxFlow 以 BFS 反覆尋找最短增廣路徑並推送瓶頸流量。
// 內部發生非預期錯誤時回傳零流量與空路徑，不往外傳遞。
func (s *Solver) MaxFlow(n *Network, source, sink VertexID) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			s.Logger.Error("max flow aborted",
				zap.Any("panic", r),
				zap.Int("paths_before_abort", len(result.Paths)),
			)
			n.ResetFlow()
			result = Result{}
		}
	}()

	if n == nil || !n.HasVertex(source) || !n.HasVertex(sink) || source == sink {
		return Result{}
	}

	for len(result.Paths) < s.MaxPaths {
		path := n.shortestAugmentingPath(source, sink)
		if path == nil {
			return result
		}

		bottleneck := math.Inf(1)
		for _, e := range path {
			bottleneck = math.Min(bottleneck, e.Residual())
		}
		if bottleneck <= epsilon || math.IsInf(bottleneck, 1) {
			panic(fmt.Sprintf("invalid bottleneck %v on augmenting path", bottleneck))
		}

		vertices := make([]VertexID, 0, len(path)+1)
		vertices = append(vertices, source)
		for _, e := range path {
			e.Flow += bottleneck
			e.reverse.Flow -= bottleneck
			vertices = append(vertices, e.To)
		}

		result.TotalFlow += bottleneck
		result.Paths = append(result.Paths, vertices)
	}

	// 上限已到，檢查是否仍有增廣路徑
	if n.shortestAugmentingPath(source, sink) != nil {
		result.Truncated = true
		s.Logger.Debug("max flow truncated at path cap",
			zap.Int("max_paths", s.MaxPaths),
			zap.Float64("total_flow", result.TotalFlow),
		)
	}
	return result
}

// shortestAugmentingPath 在殘餘圖上 BFS，回傳最少邊數的增廣路徑
func (n *Network) shortestAugmentingPath(source, sink VertexID) []*Edge {
	parent := map[VertexID]*Edge{}
	visited := map[VertexID]bool{source: true}
	queue := []VertexID{source}

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]

		for _, e := range n.adj[u] {
			if visited[e.To] || e.Residual() <= epsilon {
				continue
			}
			visited[e.To] = true
			parent[e.To] = e
			if e.To == sink {
				return buildPath(parent, source, sink)
			}
			queue = append(queue, e.To)
		}
	}
	return nil
}

func buildPath(parent map[VertexID]*Edge, source, sink VertexID) []*Edge {
	var reversed []*Edge
	for v := sink; v != source; {
		e := parent[v]
		reversed = append(reversed, e)
		v = e.From
	}
	path := make([]*Edge, len(reversed))
	for i, e := range reversed {
		path[len(reversed)-1-i] = e
	}
	return path
}

// ResetFlow 將所有邊的流量歸零
func (n *Network) ResetFlow() {
	for _, e := range n.edges {
		e.Flow = 0
	}
}

// FlowInto 流入頂點的正向淨流量
func (n *Network) FlowInto(v VertexID) float64 {
	total := 0.0
	for _, e := range n.InEdges(v) {
		if e.Flow > 0 {
			total += e.Flow
		}
	}
	return total
}
