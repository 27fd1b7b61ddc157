// Package unidash embeds the unidash listing pipeline in a Go program:
// configured pages over record collections stored in Valkey, Redis or memory,
// queried with search, facet, range, sort and page parameters.
//
//	client, _ := unidash.New(ctx,
//	    unidash.WithMemory(),
//	    unidash.WithPages(unidash.PageSpec{
//	        Name:     "results",
//	        Search:   &unidash.SearchSpec{Fields: []string{"name"}},
//	        Facets:   []unidash.FacetSpec{{Name: "status"}},
//	        SortKeys: []unidash.SortKeySpec{{Name: "score", Field: "score", Kind: unidash.SortNumber, Desc: true}},
//	    }),
//	)
//	_ = client.Put(ctx, "results", rows)
//	view, _ := client.Page("results").Query(ctx, unidash.Query{
//	    Selected: map[string][]string{"status": {"pass"}},
//	    Sort:     "score",
//	})
package unidash
