package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	catalogQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_catalog_queries_total",
			Help: "Catalog listings served, by whether any filter was applied.",
		},
		[]string{"filtered"},
	)

	relatedResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storefront_related_products_results",
			Help:    "Number of related products returned per lookup.",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
	)

	ratingRecomputations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_rating_recomputations_total",
			Help: "Product rating recomputations, by outcome (stored, missing_product, error).",
		},
		[]string{"outcome"},
	)

	reviewsCascadeDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_reviews_cascade_deleted_total",
			Help: "Reviews removed together with their product.",
		},
	)
)
