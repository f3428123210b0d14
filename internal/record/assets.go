package record

// DeriveAssets flattens the assets of every chain into standalone asset
// documents. Each one is tagged with its owning chainId and isSupported=true.
// Assets without a symbol cannot be keyed and are skipped. When two chains
// declare the same symbol the later declaration wins; its position is that of
// the first declaration.
func DeriveAssets(chains []Document) []Document {
	var (
		assets []Document
		index  = make(map[string]int)
	)

	for _, chain := range chains {
		chainID := ChainKey(chain)
		list, _ := chain[FieldAssets].([]any)

		for _, raw := range list {
			fields, ok := raw.(map[string]any)
			if !ok {
				continue
			}

			asset := Document(fields).Clone()
			asset[FieldChainID] = chainID
			asset[FieldIsSupported] = true

			key := AssetKey(asset)
			if key == "" {
				continue
			}

			if i, seen := index[key]; seen {
				assets[i] = asset
				continue
			}
			index[key] = len(assets)
			assets = append(assets, asset)
		}
	}

	return assets
}
