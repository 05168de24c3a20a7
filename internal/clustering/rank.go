package clustering

import (
	"cmp"
	"math"
	"slices"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// Group is a cluster of candidates with similar features.
type Group struct {
	Vibe       string      `json:"vibe"`
	Centroid   Features    `json:"centroid"`
	Distance   float64     `json:"distance"` // centroid distance to the target
	Candidates []Candidate `json:"candidates"`

	first int // lowest input index, breaks ties between equidistant groups
}

// Ranking is the result of Rank. Groups are ordered nearest first; Unscored
// holds candidates without features in their input order.
type Ranking struct {
	Groups   []Group     `json:"groups"`
	Unscored []Candidate `json:"unscored,omitempty"`
}

// Candidates flattens the ranking into playlist order.
func (r Ranking) Candidates() []Candidate {
	var out []Candidate
	for _, g := range r.Groups {
		out = append(out, g.Candidates...)
	}
	return append(out, r.Unscored...)
}

// candidateObservation wraps a Candidate to implement clusters.Observation.
type candidateObservation struct {
	index  int
	coords clusters.Coordinates
}

func (o candidateObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o candidateObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// Rank partitions candidates that have features with k-means and orders the
// clusters by centroid distance to target, and candidates within a cluster by
// their own distance. Ties keep input order. With fewer scored candidates
// than clusters, or if partitioning fails, a single group sorted by distance
// is returned.
//
// k-means seeding is random. Of cfg.Runs partitions the one with the lowest
// within-cluster error is kept; given a partition, the order is fully
// deterministic.
func Rank(candidates []Candidate, target Target, cfg Config) Ranking {
	defaults := DefaultConfig()
	if cfg.NumClusters <= 0 {
		cfg.NumClusters = defaults.NumClusters
	}
	if cfg.Runs <= 0 {
		cfg.Runs = defaults.Runs
	}

	var obs clusters.Observations
	var ranking Ranking
	for i, c := range candidates {
		if c.Features == nil {
			ranking.Unscored = append(ranking.Unscored, c)
			continue
		}
		obs = append(obs, candidateObservation{index: i, coords: coordinates(*c.Features)})
	}

	if len(obs) == 0 {
		return ranking
	}

	goal := clusters.Coordinates{target.Energy, target.Valence, target.Danceability}

	var partition clusters.Clusters
	if len(obs) >= cfg.NumClusters {
		partition = bestPartition(obs, cfg.NumClusters, cfg.Runs)
	}
	if partition == nil {
		center, _ := obs.Center()
		partition = clusters.Clusters{{Center: center, Observations: obs}}
	}

	for _, cluster := range partition {
		if len(cluster.Observations) == 0 {
			continue
		}
		ranking.Groups = append(ranking.Groups, buildGroup(cluster, candidates, goal))
	}

	slices.SortStableFunc(ranking.Groups, func(a, b Group) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.first, b.first)
	})

	return ranking
}

// bestPartition runs k-means runs times and returns the partition with the
// lowest within-cluster error, or nil if every run failed.
func bestPartition(obs clusters.Observations, k, runs int) clusters.Clusters {
	var best clusters.Clusters
	bestErr := math.Inf(1)
	for i := 0; i < runs; i++ {
		cc, err := kmeans.New().Partition(obs, k)
		if err != nil {
			continue
		}
		if e := withinClusterError(cc); e < bestErr {
			best, bestErr = cc, e
		}
	}
	return best
}

// withinClusterError is the sum of squared distances from each observation
// to its cluster center.
func withinClusterError(cc clusters.Clusters) float64 {
	var sum float64
	for _, c := range cc {
		for _, o := range c.Observations {
			d := o.Distance(c.Center)
			sum += d * d
		}
	}
	return sum
}

func buildGroup(cluster clusters.Cluster, candidates []Candidate, goal clusters.Coordinates) Group {
	members := make([]candidateObservation, 0, len(cluster.Observations))
	for _, o := range cluster.Observations {
		if co, ok := o.(candidateObservation); ok {
			members = append(members, co)
		}
	}

	slices.SortFunc(members, func(a, b candidateObservation) int {
		if c := cmp.Compare(a.coords.Distance(goal), b.coords.Distance(goal)); c != 0 {
			return c
		}
		return cmp.Compare(a.index, b.index)
	})

	group := Group{
		Centroid: Features{
			Energy:       float32(cluster.Center[0]),
			Valence:      float32(cluster.Center[1]),
			Danceability: float32(cluster.Center[2]),
		},
		Distance: cluster.Center.Distance(goal),
		first:    math.MaxInt,
	}
	group.Vibe = vibeName(group.Centroid)
	for _, m := range members {
		group.Candidates = append(group.Candidates, candidates[m.index])
		group.first = min(group.first, m.index)
	}
	return group
}

// coordinates converts features into a coordinate vector.
func coordinates(f Features) clusters.Coordinates {
	return clusters.Coordinates{
		float64(f.Energy),
		float64(f.Valence),
		float64(f.Danceability),
	}
}
